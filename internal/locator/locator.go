// Package locator finds the form controls of a results portal whose markup is
// not known in advance. Each role has an ordered list of candidates and the
// first candidate that matches anything wins.
package locator

import (
	"github.com/v0xg/resultfetch/internal/page"
	"go.uber.org/zap"
)

// Role names a form control the fetch pipeline needs
type Role string

const (
	RoleIdentifier          Role = "identifier"
	RoleSecondaryIdentifier Role = "secondaryIdentifier"
	RoleChallengeAnswer     Role = "challengeAnswer"
	RoleSubmit              Role = "submit"
)

// Roles is the fixed order roles are resolved in
var Roles = []Role{RoleIdentifier, RoleSecondaryIdentifier, RoleChallengeAnswer, RoleSubmit}

// Candidate is one way of finding a role's element. It reports the first
// element it matches, or false.
type Candidate interface {
	Find(p page.Page) (page.Element, bool)
	String() string
}

// CSS is a candidate expressed as a CSS selector
type CSS string

// Find implements Candidate. A selector the page cannot evaluate is a miss.
func (s CSS) Find(p page.Page) (page.Element, bool) {
	els, err := p.Elements(string(s))
	if err != nil || len(els) == 0 {
		return nil, false
	}
	return els[0], true
}

func (s CSS) String() string { return string(s) }

// Table maps each role to its candidates in priority order
type Table map[Role][]Candidate

// DefaultTable returns the candidates used against education board portals
func DefaultTable() Table {
	return Table{
		RoleIdentifier: {
			CSS("input[name='roll']"),
			CSS("input[id*='roll']"),
			CSS("input[name*='roll']"),
			CSS("input[id='studentRoll']"),
		},
		RoleSecondaryIdentifier: {
			CSS("input[name='reg']"),
			CSS("input[name*='reg']"),
			CSS("input[id*='regno']"),
			CSS("input[name='regno']"),
		},
		RoleChallengeAnswer: {
			CSS("input[name='key']"),
			CSS("input[id*='key']"),
			CSS("input[name='security']"),
			CSS("input[name='captcha']"),
		},
		RoleSubmit: {
			CSS("input[type='submit']"),
			CSS("button[type='submit']"),
			CSS("button[id*='submit']"),
			CSS("input[id*='submit']"),
		},
	}
}

// Binding is a role resolved to an element, along with the candidate that matched
type Binding struct {
	Element page.Element
	Matched Candidate
}

// FieldRoleSet holds the located element for each role. Roles that nothing
// matched are absent.
type FieldRoleSet map[Role]Binding

// Get returns the element bound to role
func (s FieldRoleSet) Get(role Role) (page.Element, bool) {
	b, ok := s[role]
	if !ok {
		return nil, false
	}
	return b.Element, true
}

// Has reports whether role was located
func (s FieldRoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// Locator resolves roles against a page
type Locator struct {
	table  Table
	logger *zap.Logger
}

// New creates a Locator. The table is copied so later changes by the caller
// do not leak in.
func New(table Table, logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}
	cp := make(Table, len(table))
	for role, cands := range table {
		cp[role] = append([]Candidate(nil), cands...)
	}
	return &Locator{table: cp, logger: logger}
}

// Locate resolves every role independently. It only reads the page.
func (l *Locator) Locate(p page.Page) FieldRoleSet {
	found := make(FieldRoleSet, len(Roles))
	for _, role := range Roles {
		for _, cand := range l.table[role] {
			el, ok := cand.Find(p)
			if !ok {
				continue
			}
			found[role] = Binding{Element: el, Matched: cand}
			l.logger.Debug("role located", zap.String("role", string(role)), zap.Stringer("candidate", cand))
			break
		}
		if !found.Has(role) {
			l.logger.Debug("role not found", zap.String("role", string(role)))
		}
	}
	return found
}
