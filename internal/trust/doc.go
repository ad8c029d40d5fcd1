// Package trust records which hook sets a user has reviewed and approved.
//
// A record is keyed by Hash(root, hooks), so any change to a hook command or
// description, or a different repository root, needs a new approval. Records
// live in $XDG_DATA_HOME/offshoot/trusted:
//
//	repo_root: /home/me/src/app
//	trusted_at: "2026-01-02T15:04:05Z"
//	hooks:
//	  post_add:
//	    - command: npm install
//	      description: Install dependencies
//
// Hook sets with no commands are always trusted.
package trust
