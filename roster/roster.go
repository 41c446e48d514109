// Package roster holds the in-memory employee roster and its flat-file
// representation.
//
// The roster is an ordered list of Employee values. Order is insertion order
// and is used for display only; names need not be unique.
package roster

import (
	"fmt"
	"strconv"
	"strings"
)

// Employee is a single roster entry. Employees are values and are never
// modified once created.
type Employee struct {
	Name     string  `db:"name"`
	Position string  `db:"position"`
	Salary   float64 `db:"salary"`
}

// SalaryString formats the salary in its shortest plain decimal form, as it
// is written to the data file.
func (e Employee) SalaryString() string {
	return strconv.FormatFloat(e.Salary, 'f', -1, 64)
}

// String describes an employee the way it is shown to the operator.
func (e Employee) String() string {
	return fmt.Sprintf("Nome: %s, Cargo: %s, Salário: %s", e.Name, e.Position, e.SalaryString())
}

// Matches reports whether search selects this employee, either by the full
// name or by the first word of the name. Both comparisons ignore case.
func (e Employee) Matches(search string) bool {
	search = strings.TrimSpace(search)
	if search == "" {
		return false
	}
	if strings.EqualFold(e.Name, search) {
		return true
	}
	fields := strings.Fields(e.Name)
	return len(fields) > 0 && strings.EqualFold(fields[0], search)
}

// Store is the ordered in-memory roster for one session.
type Store struct {
	employees []Employee
}

// NewStore returns a store holding a copy of employees.
func NewStore(employees []Employee) *Store {
	s := &Store{}
	s.employees = append(s.employees, employees...)
	return s
}

// Len returns the number of employees.
func (s *Store) Len() int {
	return len(s.employees)
}

// All returns a copy of the roster in display order.
func (s *Store) All() []Employee {
	out := make([]Employee, len(s.employees))
	copy(out, s.employees)
	return out
}

// Add appends an employee.
func (s *Store) Add(e Employee) {
	s.employees = append(s.employees, e)
}

// Match is one search hit: the employee and its position in the store.
type Match struct {
	Index    int
	Employee Employee
}

// Find returns the employees selected by search, in store order.
func (s *Store) Find(search string) []Match {
	var matches []Match
	for i, e := range s.employees {
		if e.Matches(search) {
			matches = append(matches, Match{Index: i, Employee: e})
		}
	}
	return matches
}

// Remove deletes the employee held at m.Index. The match must still describe
// the store, otherwise an error is returned and nothing is removed.
func (s *Store) Remove(m Match) error {
	if m.Index < 0 || m.Index >= len(s.employees) {
		return fmt.Errorf("index %d out of range for roster of %d", m.Index, len(s.employees))
	}
	if s.employees[m.Index] != m.Employee {
		return fmt.Errorf("roster changed: entry %d is no longer %q", m.Index, m.Employee.Name)
	}
	s.employees = append(s.employees[:m.Index], s.employees[m.Index+1:]...)
	return nil
}
