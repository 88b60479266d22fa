package iffpicture

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// PictureDB is the sqlite catalog of scanned pictures, keyed by path.
type PictureDB struct {
	db *sql.DB
}

func NewPictureDB(file string) (*PictureDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS picture (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, sha1 TEXT NOT NULL, form TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, planes INTEGER NOT NULL, color_type TEXT NOT NULL, ham INTEGER NOT NULL, ehb INTEGER NOT NULL, compressed INTEGER NOT NULL, author TEXT, annotation TEXT)"); err != nil {
		return nil, err
	}

	return &PictureDB{
		db: db,
	}, nil
}

// Record is one catalog row describing a scanned picture.
type Record struct {
	Path       string
	SHA1       string
	Form       string
	Width      int
	Height     int
	Planes     int
	ColorType  string
	HAM        bool
	EHB        bool
	Compressed bool
	Author     string
	Annotation string
}

// Store inserts or replaces the record for its path.
func (db *PictureDB) Store(rec *Record) error {
	_, err := db.db.Exec(
		"INSERT OR REPLACE INTO picture (path, sha1, form, width, height, planes, color_type, ham, ehb, compressed, author, annotation) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		rec.Path, rec.SHA1, rec.Form, rec.Width, rec.Height, rec.Planes,
		rec.ColorType, rec.HAM, rec.EHB, rec.Compressed, rec.Author, rec.Annotation)
	return err
}

// FindByPath returns the record for path, or nil if the path has not
// been scanned.
func (db *PictureDB) FindByPath(path string) (*Record, error) {
	rec := &Record{}
	err := db.db.QueryRow(
		"SELECT path, sha1, form, width, height, planes, color_type, ham, ehb, compressed, IFNULL(author, ''), IFNULL(annotation, '') FROM picture WHERE path = ?",
		path).Scan(&rec.Path, &rec.SHA1, &rec.Form, &rec.Width, &rec.Height,
		&rec.Planes, &rec.ColorType, &rec.HAM, &rec.EHB, &rec.Compressed,
		&rec.Author, &rec.Annotation)
	switch err {
	case nil:
		return rec, nil
	case sql.ErrNoRows:
		return nil, nil
	default:
		return nil, err
	}
}

// Close closes the underlying database.
func (db *PictureDB) Close() error {
	return db.db.Close()
}
