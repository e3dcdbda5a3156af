package builder

import (
	"fmt"

	"github.com/chazu/graft/meta"
)

// ---------------------------------------------------------------------------
// Replacement scope
// ---------------------------------------------------------------------------

// Replacement describes a snippet or method substitution the builder is
// currently parsing. While a replacement scope is active, the builder does
// not check the value kinds flowing through the frame: replacement bodies
// may use non-Java kinds such as raw machine words and bare pointers.
type Replacement struct {
	original   *meta.Method
	substitute *meta.Method
	intrinsic  bool
}

// NewReplacement pairs an original method with the body substituted for it.
// intrinsic marks the substitution as atomic with respect to deoptimization:
// any restart inside the body resumes at the original call site.
func NewReplacement(original, substitute *meta.Method, intrinsic bool) *Replacement {
	return &Replacement{original: original, substitute: substitute, intrinsic: intrinsic}
}

// OriginalMethod returns the method being replaced.
func (r *Replacement) OriginalMethod() *meta.Method { return r.original }

// ReplacementMethod returns the substituted body.
func (r *Replacement) ReplacementMethod() *meta.Method { return r.substitute }

// IsIntrinsic reports whether this replacement is inlined as a compiler
// intrinsic. Deoptimization within an intrinsic restarts the interpreter at
// the intrinsified call, never inside the body.
func (r *Replacement) IsIntrinsic() bool { return r.intrinsic }

func (r *Replacement) String() string {
	mode := "snippet"
	if r.intrinsic {
		mode = "intrinsic"
	}
	return fmt.Sprintf("%s[%s -> %s]", mode, r.original.Key(), r.substitute.Key())
}
