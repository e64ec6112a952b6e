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
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/meshbuilder/mesh"
)

const DefaultProfile = "meshbuilder.ini"

var cfgFile string

// rootCmd builds, saves and splits the mesh described by a profile
var rootCmd = &cobra.Command{
	Use:   "meshbuilder [profile]",
	Short: "Tetrahedral mesh builder for assemblies of figures",
	Long: `
Reads a mesh profile (default meshbuilder.ini), triangulates the surface of every figure,
tetrahedralizes the assembly with TetGen, saves the mesh and writes one region mesh per
segment into the data directory.

meshbuilder [profile]`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mr := &MeshRun{
			ProfileFile: DefaultProfile,
			DataDir:     viper.GetString("data-dir"),
			OutPrefix:   viper.GetString("out"),
			TetGen:      viper.GetString("tetgen"),
			Manifest:    viper.GetString("manifest"),
			Refine:      viper.GetBool("refine"),
		}
		if len(args) == 1 {
			mr.ProfileFile = args[0]
		}
		if dir := viper.GetString("cpuprofile"); dir != "" {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.NoShutdownHook).Stop()
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		run := func() error { return RunMesh(ctx, mr, &mesh.TetGenMesher{Path: mr.TetGen}) }
		var err error
		if viper.GetBool("perf") {
			var instructions uint64
			if instructions, err = countInstructions(run); err == nil {
				log.Printf("CPU instructions: %d", instructions)
			}
		} else {
			err = run()
		}
		if err != nil {
			log.Fatalf("error: %v", err)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.meshbuilder.yaml)")
	rootCmd.Flags().String("data-dir", "Data", "directory receiving the region meshes")
	rootCmd.Flags().StringP("out", "o", "out", "file prefix of the saved tetrahedral mesh")
	rootCmd.Flags().String("tetgen", "tetgen", "TetGen executable")
	rootCmd.Flags().BoolP("refine", "r", false, "refine the mesh with the radial size field of the [Mesh] section")
	rootCmd.Flags().StringP("manifest", "m", "", "YAML split manifest overriding the segment counts")
	rootCmd.Flags().String("cpuprofile", "", "write a CPU profile into this directory")
	rootCmd.Flags().Bool("perf", false, "count the CPU instructions of the whole run")
	if err := viper.BindPFlags(rootCmd.Flags()); err != nil {
		panic(err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".meshbuilder")
	}
	viper.SetEnvPrefix("MESHBUILDER")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
