// Package filter selects applications with expr-lang expressions.
//
// Expressions see the application fields (Name, DomainID, Framework, UUID,
// Aliases, ServerIdentity, Created) and a set of helpers:
//
//	Framework == "ruby-1.9" and createdBefore(parseDate("2013-01-01"))
//	hasAlias("www.example.com") or contains(Name, "blog")
//
// Compiled programs are cached by expression, and named presets from the
// configuration file are compiled once through a Manager.
package filter
