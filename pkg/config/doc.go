/*
Package config loads and validates the rule set for a tagger run.

	            +-------------+
	            |   Config    |
	            |   (Rules)   |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   HCL    | |   JSON   |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Reads rules files (.yaml/.yml, .hcl, .json) picked by extension
- Rejects unknown fields so typos fail loudly
- Resolves tag source paths relative to the rules file
- Merges command line rules after file rules, keeping order

🔄 Flow:
1. Reads the rules file
2. Parses format-specific syntax through the registered Parser
3. Resolves relative tag_files paths
4. Validates what the regex engine will not (empty paths, bad globs)

Patterns themselves are compiled later, by the operation package, so that a
bad pattern is reported before any file is touched regardless of where it
came from.

🔍 Example:

	cfg, err := config.Load(ctx, ".tagger.yaml")
	if err != nil {
		return err
	}
	cfg.Merge(flagRules)
*/
package config
