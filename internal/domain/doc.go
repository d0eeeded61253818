// Package domain contains shared domain types used across the mediation core.
// This root package holds sentinel errors, validation types, the reusable
// entity field groups (Identity, Audit, TenantScope, Concurrency, SoftDelete)
// with their Entity capability interface, the ChangeNotification published
// after successful writes, and the sample Priority entity. The filter/sort
// expression compiler lives in the domain/filter sub-package.
package domain
