// Package extract pulls links and member records out of directory pages.
//
// An Extractor is built from a site profile (config.SiteConfig). Its CSS
// selectors are compiled once with cascadia and evaluated with goquery over
// a tree parsed by golang.org/x/net/html.
//
// # Links
//
// Pagination links and detail links are collected in document order. Only
// hrefs that start with "http://" or "https://" are kept; relative URLs are
// dropped, never resolved against the page URL. Duplicates within one page
// are left for the crawler to filter.
//
// # Records
//
// A page carries a record only when it has a detail card. Fields are found by
// label-anchored slicing (see SliceAfterLabel): each label is searched in the
// whole text of a description block and its value runs to the end of that
// block. When one block holds several labels, earlier values therefore keep
// the text of later labels. This matches how the directory has always been
// scraped and is covered by tests.
package extract
