package storage

import "fmt"

// Kind classifies the typed errors the storage layer can raise. Package or
// flag "not found" is not an error kind: §4.7/§7 define it as a successful
// empty result, surfaced as a boolean return, not an error.
type Kind string

const (
	KindFileReadFail             Kind = "file_read_fail"
	KindProtobufParseFail        Kind = "protobuf_parse_fail"
	KindStorageFileNotFound      Kind = "storage_file_not_found"
	KindMapFileFail              Kind = "map_file_fail"
	KindHashTableSizeLimit       Kind = "hash_table_size_limit"
	KindBytesParseFail           Kind = "bytes_parse_fail"
	KindHigherStorageFileVersion Kind = "higher_storage_file_version"
	KindInvalidStorageFileOffset Kind = "invalid_storage_file_offset"
	KindInvalidStoredFlagType    Kind = "invalid_stored_flag_type"
	KindFileCreationFail         Kind = "file_creation_fail"
)

// Error is the typed error every storage operation returns on failure. Kind
// is meant to be switched on by callers; Error still wraps the underlying
// cause so %w-based errors.Is/errors.As keep working through it.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Is lets errors.Is(err, ErrKind(KindBytesParseFail)) work against a sentinel
// constructed with the same Kind, independent of message/wrapped cause.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.Kind == e.Kind
}

func newErr(kind Kind, msg string, cause error) error {
	return &Error{Kind: kind, msg: msg, err: cause}
}

// ErrKind returns a sentinel usable with errors.Is to test a Kind, ignoring
// message and cause.
func ErrKind(kind Kind) error {
	return &Error{Kind: kind}
}

// Wrap builds a typed Error for callers outside this package (the builder
// and mapping cache), preserving cause so errors.Is/errors.As still see
// through it.
func Wrap(kind Kind, msg string, cause error) error {
	return newErr(kind, msg, cause)
}
