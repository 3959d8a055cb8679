package lyrics

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Overrides serves hand-curated lyrics files named "{artist}-{song}.txt" for
// songs lrclib can't find or gets wrong. The file content is returned verbatim.
type Overrides struct {
	fsys fs.FS
}

func NewOverrides(fsys fs.FS) *Overrides {
	return &Overrides{fsys: fsys}
}

// OverridesDir returns an override store rooted at dir, or an empty store if
// dir is blank.
func OverridesDir(dir string) *Overrides {
	if dir == "" {
		return NewOverrides(nil)
	}
	return NewOverrides(os.DirFS(dir))
}

func (o *Overrides) Lookup(song, artist string) (string, bool, error) {
	if o == nil || o.fsys == nil {
		return "", false, nil
	}

	name := artist + "-" + song + ".txt"
	// the store is flat, so a name with a separator can never be in it
	if strings.ContainsAny(name, `/\`) || !fs.ValidPath(name) {
		return "", false, nil
	}

	data, err := fs.ReadFile(o.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read override %q: %w", name, err)
	}
	return string(data), true, nil
}
