/*
Package iffpicture is a library for converting legacy Amiga IFF
pictures (ILBM, PBM, RGBN, RGB8, DEEP, ACBM, FAXX) into PNG files and
for cataloguing collections of them.

The decode engine lives in the picture subpackage; the iff subpackage
walks the chunk container. This package ties them to the filesystem:
one-shot conversion, and a concurrent directory scan that records
every picture found into a sqlite catalog.
*/
package iffpicture

import "log"

type IFFPicture struct {
	db     *PictureDB
	logger *log.Logger
}

// New returns a library handle using the given catalog database, which
// may be nil when only Convert is needed.
func New(db *PictureDB, logger *log.Logger) *IFFPicture {
	return &IFFPicture{
		db:     db,
		logger: logger,
	}
}

// Close releases the catalog database, if any.
func (m *IFFPicture) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
