package builder

// This file documents the external collaborators named in §6 as interface
// contracts. None of them is implemented here — the textual declaration
// parser, code generator, device-config overlay, and partition enumeration
// are explicitly out of scope (§1) — but pinning their shape lets the
// builder and the rest of this module compile against a stable boundary.

// DeclarationSource is what the (unimplemented) textual flag-declaration
// parser supplies for one package.
type DeclarationSource struct {
	Package string
	Flags   []FlagDeclarationInput
}

// FlagDeclarationInput is one flag as declared in source, prior to any
// value assignment.
type FlagDeclarationInput struct {
	Name        string
	Description string
}

// ValueAssignmentInput is what the (unimplemented) value parser supplies
// for one flag override.
type ValueAssignmentInput struct {
	Package    string
	Name       string
	State      FlagState
	Permission Permission
}

// OverlayLookup is the device-config overlay's contract (§6, §9's open
// question on overlay layering): it returns whether a runtime override
// exists for namespace/package.name. The core never calls this — applying
// an override is the overlay collaborator's responsibility, gated on the
// flag info file's IsReadWrite bit, not enforced here.
type OverlayLookup interface {
	Lookup(namespace, qualifiedName string) (value bool, ok bool)
}

// PartitionEnumerator yields the fixed set of filesystem paths to scan for
// per-partition flag blobs (§6). A real implementation walks a device
// image's partition layout; that scan is out of scope for this module, so
// only the contract is pinned.
type PartitionEnumerator interface {
	EnumeratePartitions() ([]string, error)
}
