package iffpicture

import (
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bodgit/iffpicture/iff"
	"github.com/bodgit/iffpicture/picture"
)

// formMagic is the container signature checked before attempting a
// full parse.
var formMagic = []byte{'F', 'O', 'R', 'M'}

func isCandidate(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".iff", ".ilbm", ".lbm", ".ham", ".acbm", ".deep", ".rgbn", ".rgb8", ".faxx":
		return true
	}
	return false
}

func (m *IFFPicture) findPictures(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() {
				return nil
			}

			// Ignore any file greater than 16 MB
			if info.Size() > 16<<(10*2) {
				return nil
			}

			if !isCandidate(file) {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

// scanFile parses just enough of one file to produce a catalog record.
func (m *IFFPicture) scanFile(file string) (*Record, error) {
	data, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, formMagic) {
		return nil, nil
	}

	f, err := iff.Parse(data)
	if err != nil {
		return nil, nil
	}
	p, err := picture.New(f)
	if err != nil {
		m.logger.Printf("Skipping \"%s\": %v\n", file, err)
		return nil, nil
	}
	prof, err := p.Analyze()
	if err != nil {
		m.logger.Printf("Skipping \"%s\": %v\n", file, err)
		return nil, nil
	}

	sha, err := sha1File(file)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		Path:       file,
		SHA1:       sha,
		Form:       p.Form.String(),
		Width:      int(p.Header.Width),
		Height:     int(p.Header.Height),
		Planes:     int(p.Header.NPlanes),
		ColorType:  prof.ColorType.String(),
		HAM:        prof.IsHAM,
		EHB:        prof.IsEHB,
		Compressed: prof.IsCompressed,
		Author:     p.Metadata.Author,
	}
	if len(p.Metadata.Annotations) > 0 {
		rec.Annotation = p.Metadata.Annotations[0]
	}
	return rec, nil
}

func (m *IFFPicture) fileWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			rec, err := m.scanFile(file)
			if err != nil {
				errc <- err
				return
			}
			if rec == nil {
				continue
			}

			if err := m.db.Store(rec); err != nil {
				errc <- err
				return
			}
			m.logger.Printf("Catalogued \"%s\" (%s %dx%d)\n", file, rec.Form, rec.Width, rec.Height)
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks path recursively and records every readable IFF picture
// into the catalog database.
func (m *IFFPicture) Scan(path string) error {
	if m.db == nil {
		return errors.New("no catalog database")
	}

	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := m.findPictures(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < 10; i++ {
		errc, err := m.fileWorker(ctx, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
