// Package core provides the business logic of the flashcard service.
//
// It is independent of any transport: the web handlers and the cardimport
// CLI both drive the same [Service], and persistence sits behind the [Store]
// interface.
//
// # Import pipeline
//
// File contents go through [cardcsv.RowsFromFile] and
// [cardcsv.NormalizeReport] and the surviving records are appended to a deck
// in one transaction:
//
//	result, err := svc.ImportCards(ctx, userID, deckID, "verbs.csv", data)
//
// Imports are bounded by an [ImportLimiter]; when every slot stays busy for
// the configured wait, callers get [ErrTooManyImports].
//
// # Sign-in
//
// [Service.RequestSignIn] issues a short-lived emailed code and
// [Service.VerifySignIn] exchanges it for a bearer token. The token is shown
// once; only its hash is stored.
//
// # Error handling
//
// Errors are plain wrapped errors around the sentinels in errors.go. Use
// [MapError] to turn them into a [UserMessage] with a support code.
package core
