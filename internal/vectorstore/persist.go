package vectorstore

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"contractqa/internal/domain"
)

const (
	vectorsFile = "index.gob"
	chunksFile  = "chunks.json"
	formatV1    = 1
)

type vectorFile struct {
	Version   int
	Model     string
	Dimension int
	Vectors   [][]float32
}

// Save writes the index under dir. Both files are written to a sibling
// temporary directory first and swapped in with renames, so a reader sees
// either the previous index or the new one.
func (idx *Index) Save(dir string) error {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return domain.E(domain.ErrStorage, "vectorstore", eris.Wrapf(err, "create parent of %s", dir))
	}

	tmp := dir + ".tmp-" + uuid.NewString()
	if err := os.Mkdir(tmp, 0o755); err != nil {
		return domain.E(domain.ErrStorage, "vectorstore", eris.Wrap(err, "create temp dir"))
	}
	defer os.RemoveAll(tmp)

	if err := writeGob(filepath.Join(tmp, vectorsFile), vectorFile{
		Version:   formatV1,
		Model:     idx.model,
		Dimension: idx.dimension,
		Vectors:   idx.vectors,
	}); err != nil {
		return domain.E(domain.ErrStorage, "vectorstore", err)
	}
	if err := writeJSON(filepath.Join(tmp, chunksFile), idx.chunks); err != nil {
		return domain.E(domain.ErrStorage, "vectorstore", err)
	}

	if err := swapDir(tmp, dir); err != nil {
		return domain.E(domain.ErrStorage, "vectorstore", err)
	}
	zap.L().Debug("index saved",
		zap.String("component", "vectorstore"),
		zap.String("path", dir),
		zap.Int("chunks", len(idx.chunks)))
	return nil
}

// Load reads an index written by Save.
func Load(dir string, maxSources int) (*Index, error) {
	var vf vectorFile
	if err := readGob(filepath.Join(dir, vectorsFile), &vf); err != nil {
		return nil, domain.E(domain.ErrStorage, "vectorstore", err)
	}
	if vf.Version != formatV1 {
		return nil, domain.E(domain.ErrStorage, "vectorstore", eris.Errorf("unsupported index version %d", vf.Version))
	}

	var chunks []domain.Chunk
	data, err := os.ReadFile(filepath.Join(dir, chunksFile))
	if err != nil {
		return nil, domain.E(domain.ErrStorage, "vectorstore", eris.Wrap(err, "read chunks"))
	}
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, domain.E(domain.ErrStorage, "vectorstore", eris.Wrap(err, "decode chunks"))
	}

	if len(chunks) == 0 || len(chunks) != len(vf.Vectors) {
		return nil, domain.E(domain.ErrStorage, "vectorstore",
			eris.Errorf("index holds %d chunks and %d vectors", len(chunks), len(vf.Vectors)))
	}
	idx, err := newIndex(chunks, vf.Vectors, vf.Model, maxSources)
	if err != nil {
		return nil, domain.E(domain.ErrStorage, "vectorstore", err)
	}
	if idx.dimension != vf.Dimension {
		return nil, domain.E(domain.ErrStorage, "vectorstore",
			eris.Errorf("index header says dimension %d, vectors have %d", vf.Dimension, idx.dimension))
	}
	return idx, nil
}

func writeGob(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		return eris.Wrapf(err, "encode %s", path)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return eris.Wrapf(err, "sync %s", path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "close %s", path)
	}
	return nil
}

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return eris.Wrapf(err, "decode %s", path)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrap(err, "marshal chunks")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}

// swapDir moves src to dst, replacing dst if it exists and restoring it if
// the final rename fails.
func swapDir(src, dst string) error {
	old := ""
	if _, err := os.Stat(dst); err == nil {
		old = dst + ".old-" + uuid.NewString()
		if err := os.Rename(dst, old); err != nil {
			return eris.Wrapf(err, "move aside %s", dst)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return eris.Wrapf(err, "stat %s", dst)
	}

	if err := os.Rename(src, dst); err != nil {
		if old != "" {
			_ = os.Rename(old, dst)
		}
		return eris.Wrapf(err, "rename into %s", dst)
	}
	if old != "" {
		_ = os.RemoveAll(old)
	}
	return nil
}
