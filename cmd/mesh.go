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

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshbuilder/InputParameters"
	"github.com/notargets/meshbuilder/figure"
	"github.com/notargets/meshbuilder/geometry2D"
	"github.com/notargets/meshbuilder/mesh"
	"github.com/notargets/meshbuilder/splitter"
	"github.com/notargets/meshbuilder/surface"
	"github.com/notargets/meshbuilder/utils"
)

// surfaceEngine triangulates the figure facets, the triangle build tag swaps in the C library
var surfaceEngine surface.Triangulator = geometry2D.Engine{}

type MeshRun struct {
	ProfileFile string
	DataDir     string
	OutPrefix   string
	TetGen      string
	Manifest    string
	Refine      bool
}

// RunMesh reads the profile and runs build, save and split-and-save
func RunMesh(ctx context.Context, mr *MeshRun, vm mesh.VolumeMesher) (err error) {
	var (
		p       *InputParameters.Profile
		mp      *InputParameters.MeshParameters
		figures []*figure.Figure
		m       *mesh.Mesh
	)
	if p, err = InputParameters.ReadProfile(mr.ProfileFile); err != nil {
		return
	}
	if mp, err = InputParameters.NewMeshParameters(p); err != nil {
		return
	}
	opt := splitter.Options{DataDir: mr.DataDir}
	if mr.Manifest != "" {
		var data []byte
		if data, err = os.ReadFile(mr.Manifest); err != nil {
			return fmt.Errorf("failed to read manifest: %w", err)
		}
		sm := &InputParameters.SplitManifest{}
		if err = sm.Parse(data); err != nil {
			return fmt.Errorf("failed to parse manifest %s: %w", mr.Manifest, err)
		}
		sm.Print()
		sm.Apply(mp)
		if sm.DataDir != "" {
			opt.DataDir = sm.DataDir
		}
		opt.Prefix = sm.Prefix
	}
	opt.SegmentsX, opt.SegmentsY, opt.SegmentsZ = mp.SegmentsX, mp.SegmentsY, mp.SegmentsZ
	mp.Print()

	if figures, err = figure.FromParameters(p, mp, surfaceEngine); err != nil {
		return
	}
	for i, f := range figures {
		log.Printf("Triangulating figure %d from %d", i+1, len(figures))
		if err = f.MakeTriangulation(surfaceEngine); err != nil {
			return fmt.Errorf("failed to triangulate figure %d: %w", i+1, err)
		}
	}
	if m, err = mesh.NewMesh(figures, mp); err != nil {
		return
	}
	if mr.Refine {
		m.SizeField = mesh.RadialSizeField(
			InputParameters.Request(p, "Mesh", "refine_center", r3.Vec{}),
			InputParameters.Request(p, "Mesh", "refine_radius", 1.),
			InputParameters.Request(p, "Mesh", "refine_factor", 0.5),
		)
	}
	if err = m.Build(ctx, vm); err != nil {
		return
	}
	if err = m.Save(mr.OutPrefix); err != nil {
		return
	}
	if _, err = splitter.SplitAndSave(m, opt); err != nil {
		return
	}
	for _, key := range p.Unused() {
		log.Printf("Unused profile entry %s", key)
	}
	log.Printf("Memory: %s", utils.GetMemUsage())
	return
}
