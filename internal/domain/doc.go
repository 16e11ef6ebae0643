// Package domain provides shared value types for clickplan: screen geometry,
// pointer buttons, window handles, and the match arguments and results
// exchanged with the visual matcher.
//
// This package follows strict import rules:
//   - CAN import: internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain
