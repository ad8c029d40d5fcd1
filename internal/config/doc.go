// Package config provides configuration types and loading for offshoot.
//
// # Configuration Files
//
// Two files are read and merged:
//
//   - Repository config: <root>/.offshoot/config.yaml (or config.toml)
//   - Global config: $XDG_CONFIG_HOME/offshoot/config.yaml (or config.toml)
//
// The global config may only set options and worktree. The repository config
// wins for every option it sets.
//
// # Repository Configuration
//
//	options:
//	  on_conflict: backup        # abort, skip, overwrite or backup
//	worktree:
//	  path_template: ../{{repository}}-{{branch}}
//	mkdir:
//	  - path: tmp
//	link:
//	  - source: .env             # target defaults to source
//	    on_conflict: skip
//	copy:
//	  - source: config/local.yml
//	    target: config/app.yml
//	hooks:
//	  post_add:
//	    - command: npm install
//	      description: Install dependencies
//
// # Validation
//
// Unknown keys are rejected in both formats. Validate collects every problem
// before returning: missing required fields, absolute or .. paths, duplicate
// targets and hook commands that cannot be parsed as shell words.
package config
