/*
Copyright © 2024 the MPAS-Ocean authors.
This file is part of MPAS-Ocean.

MPAS-Ocean is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

MPAS-Ocean is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with MPAS-Ocean.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command mpasocean is a command-line interface for the ocean vertical
// mixing and short-wave absorption diagnostics.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/oceanutil"
	"github.com/sirupsen/logrus"
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableSorting:  true,
	})
	if os.Getenv("MPAS_DEBUG") != "" {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

func main() {
	if err := oceanutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
