// Package viewstate holds the per-entity view state of the console: the
// loaded collection, its loading and error flags, the search term and the
// item open for view or edit.
//
// Loads are tokenized. A caller starts a load with BeginLoad and hands the
// token back to Load or Fail; a result arriving after a newer BeginLoad or
// after Close is discarded, so a late network response can never overwrite
// fresher state.
package viewstate
