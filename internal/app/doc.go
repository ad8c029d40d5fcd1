// Package app provides the application context for offshoot.
//
// This package manages application-wide dependencies using the functional
// options pattern, enabling easy testing through dependency injection.
//
// # Creating an App
//
// Use New with functional options:
//
//	// Production usage
//	a := app.New(app.WithPrinter(printer))
//
//	// Testing with custom dependencies
//	a := app.New(
//	    app.WithExecutor(mockExec),
//	    app.WithTrustDir(t.TempDir()),
//	    app.WithCwd(repoDir),
//	)
//
// # Repository detection
//
// Workspace detects git or jj from the working directory and returns the
// matching provider. Deps bundles it with the printer, prompter and trust
// store for the add and remove workflows.
package app
