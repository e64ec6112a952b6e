/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/meshbuilder/splitter"
)

// InspectCmd prints the content summary of region mesh files
var InspectCmd = &cobra.Command{
	Use:   "inspect <file.sm>...",
	Short: "Summarize region mesh files",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range args {
			if err := inspect(os.Stdout, name); err != nil {
				log.Fatalf("error: %v", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(InspectCmd)
}

func inspect(w io.Writer, name string) (err error) {
	var (
		file *os.File
		rf   *splitter.RegionFile
	)
	if file, err = os.Open(name); err != nil {
		return
	}
	defer file.Close()
	if rf, err = splitter.ReadSM(file); err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	fmt.Fprintf(w, "%s\n", name)
	fmt.Fprintf(w, "%-20s%d\n", "Cells:", len(rf.Cells))
	fmt.Fprintf(w, "%-20s%d\n", "Nodes:", len(rf.Nodes))
	fmt.Fprintf(w, "%-20s%v\n", "Submesh nodes:", rf.SubmeshNodes)
	fmt.Fprintf(w, "%-20s%v\n", "Contact faces:", rf.ContactCounts)
	fmt.Fprintf(w, "%-20s%v\n", "Boundary faces:", rf.BoundaryCounts)
	for _, s := range rf.Shared {
		fmt.Fprintf(w, "  -> %-16d%d cells, %d transition nodes\n", s.DstID, len(s.Cells), len(s.TransitionNodes))
	}
	return
}
