// Package checkpoint lets an interrupted profile run pick up where it
// stopped.
//
// A checkpoint lists the board URLs that finished without any failed asset.
// With --resume those boards are skipped; boards that failed or never ran
// are processed again. The file is removed once a profile run completes
// with no failures.
//
// Checkpoints are stored in platform-specific data directories:
//   - Linux: ~/.local/share/pinscraper/checkpoints/ (or $XDG_DATA_HOME)
//   - macOS: ~/Library/Application Support/pinscraper/checkpoints/
//   - Windows: %APPDATA%/pinscraper/checkpoints/
package checkpoint
