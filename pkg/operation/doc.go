/*
Package operation implements the Tagger, which rewrites files in place.

	+-------------+
	|   Tagger    |
	|  (Process)  |
	+------+------+
	       |
	+------+------+
	|   Folder    |
	|   (Walk)    |
	+------+------+
	       |
	+------+------+
	|    File     |
	| (Transform) |
	+-------------+

🎯 Purpose:
- Compiles every rule once, before any file is read
- Picks single-file or folder mode from the input path
- Runs the text.Replacer over each selected file
- Writes the result in place, or to the output path for a single file

🔄 Flow:
1. New validates the rules and compiles patterns
2. Process dispatches on the input path
3. ProcessFolder lists direct entries, or walks the whole tree when recursive
4. ProcessFile reads, transforms, writes and reports one progress marker

⚡ Guarantees:
- Files are handled one at a time, in traversal order
- The first error stops the run
- Files written before that error are not restored

🔍 Example:

	tagger, err := operation.New(ctx, operation.Options{
		InputPath: "src",
		Rules:     rules,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	summary, err := tagger.Process(ctx)
*/
package operation
