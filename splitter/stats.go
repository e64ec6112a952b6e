package splitter

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/stat"

	"github.com/notargets/meshbuilder/utils"
)

// RegionAdjacency counts input cells held in common by every pair of regions. The
// diagonal is the cell count of each region.
func (ms *MeshSplitter) RegionAdjacency() (A utils.CSR) {
	var (
		nr = ms.MeshesCount()
		B  = utils.NewDOK(nr, ms.cellsCount)
		BT = utils.NewDOK(ms.cellsCount, nr)
	)
	for r, lm := range ms.meshes {
		for _, c := range lm.origins {
			B.Set(r, c, 1)
			BT.Set(c, r, 1)
		}
	}
	A = utils.NewCSR(nr, nr).Product(B.ToCSR(), BT.ToCSR())
	A.SetReadOnly("RegionAdjacency")
	return
}

// PrintStatistics logs the balance of the split
func (ms *MeshSplitter) PrintStatistics() {
	var (
		nr    = ms.MeshesCount()
		cells = make([]float64, nr)
	)
	for r := range cells {
		cells[r] = float64(ms.LocalCellsCount(r))
	}
	mean, std := stat.MeanStdDev(cells, nil)
	A := ms.RegionAdjacency()
	log.Printf("Split Analysis:")
	log.Printf("  Regions: %d", nr)
	log.Printf("  Cells: %d, with copies: %d (%.1f%% overlap)", ms.cellsCount, ms.ExpandedCellsCount(),
		100*float64(ms.ExpandedCellsCount()-ms.cellsCount)/float64(ms.cellsCount))
	log.Printf("  Cells per region: mean %.1f, std dev %.1f", mean, std)
	for r := 0; r < nr; r++ {
		cols, _ := A.RowNonZeros(r)
		neighbors := 0
		for _, c := range cols {
			if c != r {
				neighbors++
			}
		}
		log.Printf("  Region %d: %d cells, %d nodes, %d neighbors", r, ms.LocalCellsCount(r), ms.NodesCount(r), neighbors)
	}
}

// Print summarizes region r
func (ms *MeshSplitter) Print(r int) {
	fmt.Printf("Region %d\n", r)
	fmt.Printf("%-20s%d\n", "Nodes:", ms.NodesCount(r))
	fmt.Printf("%-20s%d\n", "Cells:", ms.LocalCellsCount(r))
	fmt.Printf("%-20s%d\n", "Shared regions:", ms.SharedRegionsCount(r))
	for k := 0; k < ms.SharedRegionsCount(r); k++ {
		fmt.Printf("  -> %-16d%d cells, %d transition nodes\n", ms.SharedRegionDstID(r, k),
			ms.SharedCellsCount(r, k), ms.TransitionNodesCount(r, k))
	}
}
