package api

import (
	"github.com/rootlinehq/rootline/internal/domain"
)

// Handler dependencies are aliases for the canonical domain interfaces so
// the REST layer and the client SDK agree on one contract.
type (
	// ImportRepository defines import-preview operations used by ImportHandler.
	ImportRepository = domain.ImportService

	// MergeRepository defines merge operations used by MergeHandler.
	MergeRepository = domain.MergeService

	// PersonRepository defines person read operations used by PersonHandler.
	PersonRepository = domain.PersonService

	// AuditRepository defines audit log operations used by AuditHandler.
	AuditRepository = domain.AuditService
)
