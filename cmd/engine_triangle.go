//go:build triangle

package cmd

import "github.com/notargets/meshbuilder/geometry2D"

func init() {
	surfaceEngine = geometry2D.TriangleLib{}
}
