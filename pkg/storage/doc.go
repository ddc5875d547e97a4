// Package storage lays out scraped listings on disk.
//
// Every listing gets its own directory under the base output directory,
// named "{title}_{vin}". Gallery images are written into it as "1.jpg",
// "2.jpg", ... using a temporary file and a rename so a half written image
// never appears under its final name.
//
// Usage:
//
//	manager, err := storage.NewManager("output")
//	if err != nil {
//	    return err
//	}
//
//	dir, created, err := manager.ListingDir("Ford Focus_WF0XXXGCDX1234567")
//	if err != nil {
//	    return err
//	}
//	path, err := dir.SaveImage(1, body)
package storage
