// Package symbol interns exchange instrument names into cheap, comparable
// integer handles shared process-wide, per the design note on interning in
// the core engine specification.
package symbol
