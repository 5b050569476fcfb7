package tvc

import "fmt"

// ErrKind enumerates the taxonomy of TVC-level failures from spec.md §7.
// Every operation that fails does so with a *Error wrapping one of these
// kinds, so callers can use errors.As to recover structured detail
// (the missing hash, the branch name, the observed/limit sizes, ...).
type ErrKind int

const (
	// ErrIO wraps an underlying filesystem or transport failure.
	ErrIO ErrKind = iota
	// ErrMalformedObject means decoding an object failed its tag check.
	ErrMalformedObject
	// ErrInvalidWorkspaceObj means Workspace.unpack was asked to
	// materialise something other than a File or Delete object.
	ErrInvalidWorkspaceObj
	// ErrNotfoundObj means an object hash was not present in the store.
	ErrNotfoundObj
	// ErrNotfoundHead means a branch has no heads/<branch> ref.
	ErrNotfoundHead
	// ErrNotfoundTrace means a commit has no traces/<hash> entry.
	ErrNotfoundTrace
	// ErrNotfoundStages means Commit was invoked with no staged tree.
	ErrNotfoundStages
	// ErrNotfoundLocalCommits means Push found no unshipped commits.
	ErrNotfoundLocalCommits
	// ErrNotfoundWorkspaceFile means a workspace path was expected but
	// absent.
	ErrNotfoundWorkspaceFile
	// ErrChangedFileNotExits means Stage found nothing to stage.
	ErrChangedFileNotExits
	// ErrRepositoryAlreadyInitialized means Init ran against a non-empty
	// .meltos directory.
	ErrRepositoryAlreadyInitialized
	// ErrFailedConnectServer means Push's sender capability returned an
	// error; local state (LocalCommits) is left untouched.
	ErrFailedConnectServer
	// ErrAlreadyCheckedOut names a checkout of the current branch.
	// Checkout itself reports that case as CheckoutAlready with a nil
	// error and never returns this kind.
	ErrAlreadyCheckedOut
)

func (k ErrKind) String() string {
	switch k {
	case ErrIO:
		return "IO"
	case ErrMalformedObject:
		return "MalformedObject"
	case ErrInvalidWorkspaceObj:
		return "InvalidWorkspaceObj"
	case ErrNotfoundObj:
		return "NotfoundObj"
	case ErrNotfoundHead:
		return "NotfoundHead"
	case ErrNotfoundTrace:
		return "NotfoundTrace"
	case ErrNotfoundStages:
		return "NotfoundStages"
	case ErrNotfoundLocalCommits:
		return "NotfoundLocalCommits"
	case ErrNotfoundWorkspaceFile:
		return "NotfoundWorkspaceFile"
	case ErrChangedFileNotExits:
		return "ChangedFileNotExits"
	case ErrRepositoryAlreadyInitialized:
		return "RepositoryAlreadyInitialized"
	case ErrFailedConnectServer:
		return "FailedConnectServer"
	case ErrAlreadyCheckedOut:
		return "AlreadyCheckedOut"
	default:
		return "Unknown"
	}
}

// Error is the structured error type surfaced by every TVC operation.
type Error struct {
	Kind    ErrKind
	Hash    ObjHash    // set for Notfound{Obj,Trace} errors
	Branch  BranchName // set for Notfound{Head} and connection errors
	Path    FilePath   // set for NotfoundWorkspaceFile
	Message string     // free-form detail, e.g. FailedConnectServer's cause
	Wrapped error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrNotfoundObj:
		return fmt.Sprintf("tvc: object not found: %s", e.Hash)
	case ErrNotfoundHead:
		return fmt.Sprintf("tvc: no head for branch %q", e.Branch)
	case ErrNotfoundTrace:
		return fmt.Sprintf("tvc: no trace tree for commit %s", e.Hash)
	case ErrNotfoundWorkspaceFile:
		return fmt.Sprintf("tvc: workspace file not found: %s", e.Path)
	case ErrFailedConnectServer:
		return fmt.Sprintf("tvc: failed to connect to server: %s", e.Message)
	default:
		if e.Message != "" {
			return fmt.Sprintf("tvc: %s: %s", e.Kind, e.Message)
		}
		return fmt.Sprintf("tvc: %s", e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Is allows errors.Is(err, &Error{Kind: X}) to match by kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newErr(kind ErrKind) *Error { return &Error{Kind: kind} }

func errNotfoundObj(h ObjHash) *Error { return &Error{Kind: ErrNotfoundObj, Hash: h} }

func errNotfoundHead(b BranchName) *Error { return &Error{Kind: ErrNotfoundHead, Branch: b} }

func errNotfoundTrace(h ObjHash) *Error { return &Error{Kind: ErrNotfoundTrace, Hash: h} }

func errNotfoundWorkspaceFile(p FilePath) *Error {
	return &Error{Kind: ErrNotfoundWorkspaceFile, Path: p}
}

func errIO(err error) *Error { return &Error{Kind: ErrIO, Wrapped: err} }

func errMalformed(msg string) *Error { return &Error{Kind: ErrMalformedObject, Message: msg} }

func errFailedConnect(msg string) *Error {
	return &Error{Kind: ErrFailedConnectServer, Message: msg}
}
