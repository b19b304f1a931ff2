// Package cart implements the storefront's cart and order pipeline.
//
// A cart is the per-user aggregate of line items. It is created implicitly
// on a user's first add-to-cart call, mutated while Open, and flipped once
// and irreversibly to Submitted at checkout. The package enforces two
// invariants that concurrent callers would otherwise break:
//
//   - exactly one Open cart per user at any time
//   - no lost updates: every accepted line-item merge is reflected in the
//     final cart state
//
// Service serializes all mutations for a given user behind a keyed mutex
// with a bounded wait, and additionally retries storage-level write
// conflicts a bounded number of times. Mutations for different users
// proceed in parallel with no shared lock. Read queries take no lock at
// all.
//
// Storage backends live in the storage subpackage; this package owns the
// aggregate types, the Store contract and the error taxonomy.
package cart
