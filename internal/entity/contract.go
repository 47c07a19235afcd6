package entity

import "fmt"

// ContractAddress identifies a deployed contract instance on the ledger.
// It is supplied by configuration and never changes at runtime.
type ContractAddress struct {
	Index    uint64 `json:"index"`
	Subindex uint64 `json:"subindex"`
}

func (that ContractAddress) String() string {
	return fmt.Sprintf("<%d,%d>", that.Index, that.Subindex)
}
