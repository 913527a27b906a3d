package core

// Composite access-rule evaluation, grounded directly on
// method_authorization.rs. Per spec §9's normative resolution of the
// aggregation open question, SomeOfResource is checked per-proof — a
// single proof must present the full amount, not a sum across several —
// which is the upstream engine's documented (if flagged-as-future-work)
// behavior, carried here deliberately rather than "fixed".

// ResourceOrNonFungible identifies what a rule leaf matches against: either
// any proof of a resource, or a proof covering one specific non-fungible
// id of that resource. A leaf built by Unresolved never matches anything,
// mirroring SoftResourceNotFound placeholders produced when a rule
// references state that failed to resolve during compilation. The zero
// value is not unresolved: it matches proofs of the all-zero address.
type ResourceOrNonFungible struct {
	Resource   Address
	ID         NonFungibleID
	HasID      bool
	unresolved bool
}

// Resolved builds a leaf that matches any proof of resource.
func Resolved(resource Address) ResourceOrNonFungible {
	return ResourceOrNonFungible{Resource: resource}
}

// ResolvedNonFungible builds a leaf that matches only a proof covering id.
func ResolvedNonFungible(resource Address, id NonFungibleID) ResourceOrNonFungible {
	return ResourceOrNonFungible{Resource: resource, ID: id, HasID: true}
}

// Unresolved builds a leaf that never matches.
func Unresolved() ResourceOrNonFungible { return ResourceOrNonFungible{unresolved: true} }

func (r ResourceOrNonFungible) proofMatches(p *Proof) bool {
	if r.unresolved {
		return false
	}
	// Re-validate against the live source on every match: a proof whose
	// backing bucket/vault was drained below its asserted amount since
	// creation must not satisfy an authorization check.
	if !p.IsValid() {
		return false
	}
	if p.ResourceAddress != r.Resource {
		return false
	}
	if !r.HasID {
		return true
	}
	ids, err := p.TotalIDs()
	if err != nil {
		return false
	}
	_, ok := ids[r.ID]
	return ok
}

func (r ResourceOrNonFungible) check(proofSets [][]*Proof) bool {
	for _, proofs := range proofSets {
		for _, p := range proofs {
			if r.proofMatches(p) {
				return true
			}
		}
	}
	return false
}

func (r ResourceOrNonFungible) checkHasAmount(amount Amount, proofSets [][]*Proof) bool {
	for _, proofs := range proofSets {
		for _, p := range proofs {
			if r.proofMatches(p) && p.TotalAmount().Cmp(amount) >= 0 {
				return true
			}
		}
	}
	return false
}

// RuleKind distinguishes the composite AccessRule shapes.
type RuleKind int

const (
	RuleThis RuleKind = iota
	RuleSomeOfResource
	RuleAllOf
	RuleAnyOf
	RuleCountOf
)

// AccessRule is a composite proof predicate tree.
type AccessRule struct {
	Kind   RuleKind
	Leaf   ResourceOrNonFungible   // RuleThis, RuleSomeOfResource
	Amount Amount                  // RuleSomeOfResource
	List   []ResourceOrNonFungible // RuleAllOf, RuleAnyOf, RuleCountOf
	Count  int                     // RuleCountOf
}

// This builds a RuleThis leaf rule.
func This(h ResourceOrNonFungible) *AccessRule { return &AccessRule{Kind: RuleThis, Leaf: h} }

// SomeOfResource builds a RuleSomeOfResource rule.
func SomeOfResource(amount Amount, h ResourceOrNonFungible) *AccessRule {
	return &AccessRule{Kind: RuleSomeOfResource, Leaf: h, Amount: amount}
}

// AllOf builds a RuleAllOf rule over list.
func AllOf(list []ResourceOrNonFungible) *AccessRule {
	return &AccessRule{Kind: RuleAllOf, List: list}
}

// AnyOf builds a RuleAnyOf rule over list.
func AnyOf(list []ResourceOrNonFungible) *AccessRule {
	return &AccessRule{Kind: RuleAnyOf, List: list}
}

// CountOf builds a RuleCountOf rule requiring k of list to match.
func CountOf(k int, list []ResourceOrNonFungible) *AccessRule {
	return &AccessRule{Kind: RuleCountOf, Count: k, List: list}
}

// Check evaluates the rule against an ordered sequence of proof sets
// (typically the caller's auth-zone plus any proofs attached to
// arguments), returning ErrNotAuthorized on failure.
func (r *AccessRule) Check(proofSets [][]*Proof) error {
	switch r.Kind {
	case RuleThis:
		if r.Leaf.check(proofSets) {
			return nil
		}
		return ErrNotAuthorized
	case RuleSomeOfResource:
		if r.Leaf.checkHasAmount(r.Amount, proofSets) {
			return nil
		}
		return ErrNotAuthorized
	case RuleAllOf:
		for _, h := range r.List {
			if !h.check(proofSets) {
				return ErrNotAuthorized
			}
		}
		return nil
	case RuleAnyOf:
		for _, h := range r.List {
			if h.check(proofSets) {
				return nil
			}
		}
		return ErrNotAuthorized
	case RuleCountOf:
		left := r.Count
		for _, h := range r.List {
			if h.check(proofSets) {
				left--
				if left <= 0 {
					return nil
				}
			}
		}
		return ErrNotAuthorized
	default:
		return ErrNotAuthorized
	}
}

// MethodAuthKind classifies how a method is protected.
type MethodAuthKind int

const (
	AuthProtected MethodAuthKind = iota
	AuthPublic
	AuthPrivate
	AuthUnsupported
)

// MethodAuthorization binds a method to either a composite rule, or one of
// the fixed dispositions (public/private/unsupported).
type MethodAuthorization struct {
	Kind MethodAuthKind
	Rule *AccessRule // only when Kind == AuthProtected
}

// Check evaluates the method's authorization against the given proof sets.
func (m MethodAuthorization) Check(proofSets [][]*Proof) error {
	switch m.Kind {
	case AuthProtected:
		return m.Rule.Check(proofSets)
	case AuthPublic:
		return nil
	case AuthPrivate:
		return ErrNotAuthorized
	case AuthUnsupported:
		return ErrUnsupportedMethod
	default:
		return ErrNotAuthorized
	}
}
