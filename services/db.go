package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate adds row-level locking to a query on dialects that support
// it. Per-user read-modify-write (XP ledger, streak record) runs under
// SELECT ... FOR UPDATE on Postgres; the sqlite test dialect serializes
// writers on its own and rejects the clause.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
