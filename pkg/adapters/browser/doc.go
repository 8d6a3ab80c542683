// Package browser implements ports.MenuProvider over a live web page.
//
// The provider knows nothing about a particular site: the caller supplies the
// URL of the category chooser and the CSS selectors that locate child
// categories, leaf items and the "no results" overlay. Page access goes
// through the small Driver interface; PlaywrightDriver is the production
// implementation and tests substitute a scripted fake.
package browser
