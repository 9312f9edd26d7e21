// Package transform maps decoded input documents to typed pgetl records.
//
// Two rules exist, one per input tree:
//   - CatalogRule: the first document of a song file becomes one CatalogItem and one Creator
//   - EventRule: NextSong entries of a log file become TimeBuckets, deduplicated Actors and Events
//
// Rules never reject a record for missing required values. A nil field is
// submitted as NULL and the store's constraints decide.
package transform
