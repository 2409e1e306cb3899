// Package viz renders terminal views of derived dynamics: sparsity masks
// styled with lipgloss and asciigraph plots of state sweeps.
package viz
