package capture

import (
	"errors"
	"fmt"
	"io"

	"fortio.org/safecast"

	"github.com/qmmzzdx/gperf-gcc-tracing/internal/clock"
	"github.com/qmmzzdx/gperf-gcc-tracing/internal/tracking"
)

// FileEnter builds a file-enter notification. dir may be empty when the
// shim had no include-directory hint.
func FileEnter(at int64, path, dir string) *Notification {
	return &Notification{Kind: KindFileEnter, At: at, Path: path, Dir: dir}
}

// FileLeave builds a file-leave notification.
func FileLeave(at int64) *Notification {
	return &Notification{Kind: KindFileLeave, At: at}
}

// DeclFinished builds a decl-finished notification.
func DeclFinished(at int64) *Notification {
	return &Notification{Kind: KindDeclFinished, At: at}
}

// StageBegin builds a stage-begin notification. order is the host's
// static stage number.
func StageBegin(at int64, label string, cat tracking.Category, order int) (*Notification, error) {
	n, err := safecast.Conv[int32](order)
	if err != nil {
		return nil, fmt.Errorf("stage order %d: %w", order, err)
	}
	return &Notification{Kind: KindStageBegin, At: at, Label: label, Category: uint8(cat), Order: n}, nil
}

// FunctionParsed builds a function-parsed notification. scope is empty
// for functions with no enclosing scope.
func FunctionParsed(at int64, signature, file, scope string, scopeCat tracking.Category) *Notification {
	return &Notification{
		Kind:          KindFunctionParsed,
		At:            at,
		Signature:     signature,
		Path:          file,
		Scope:         scope,
		ScopeCategory: uint8(scopeCat),
	}
}

// RunFinished builds the terminating notification.
func RunFinished(at int64) *Notification {
	return &Notification{Kind: KindRunFinished, At: at}
}

// Replay feeds the stream into run, restoring each notification's
// recorded timestamp through the manual clock. It returns once the
// run-finished notification is consumed; a stream that ends without one
// was cut off mid-compile and is rejected.
func Replay(r *Reader, run *tracking.Run, clk *clock.Manual) error {
	for {
		n, err := r.Next()
		if errors.Is(err, io.EOF) {
			return errors.New("capture truncated: no run-finished notification")
		}
		if err != nil {
			return err
		}

		clk.Set(n.At)

		switch n.Kind {
		case KindFileEnter:
			run.FileEnter(n.Path, n.Dir)
		case KindFileLeave:
			// The engine panics on unmatched leaves; a loose capture
			// file does not get that trust.
			if run.OpenInclusions() == 0 {
				return errors.New("capture malformed: file-leave without matching file-enter")
			}
			run.FileLeave()
		case KindDeclFinished:
			run.ForceCloseFiles()
		case KindStageBegin:
			run.StageBegin(n.Label, category(n.Category), int(n.Order))
		case KindFunctionParsed:
			run.FunctionParsed(n.Signature, n.Path, n.Scope, category(n.ScopeCategory))
		case KindRunFinished:
			return nil
		default:
			return fmt.Errorf("unknown notification kind %d", n.Kind)
		}
	}
}
