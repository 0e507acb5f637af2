// Package manifest loads and resolves lambdo deployment manifests.
//
// A manifest is a YAML mapping from function name to function definition.
// Loading happens in three passes:
//
//   - Directive expansion (!include, !env) while the file is read
//   - Placeholder resolution (${dotted.path}) against the whole document
//   - Selection of the units to process
//
// # Manifest Structure
//
//	_defaults:
//	  role: arn:aws:iam::123456789012:role/lambda
//	  runtime: python3.12
//	api:
//	  role: ${_defaults.role}
//	  runtime: ${_defaults.runtime}
//	  handler: api.handler
//	  env: !include env/api.yaml
//	  includes:
//	    src: ["**/*.py"]
//	  excludes: ["src/**/__pycache__/**"]
//
// # Private Entries
//
// Keys starting with "_" are templates. They can be referenced by
// placeholders but are never selected for packaging or deployment.
//
// # Directives
//
// Directives are YAML tags handled by a Loader. The !include path is relative
// to the file that contains it, so included files may include further files
// relative to their own location. !env substitutes an environment variable,
// or the empty string when it is unset.
package manifest
