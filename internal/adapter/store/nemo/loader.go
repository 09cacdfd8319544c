package nemo

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/fhs/go-netcdf/netcdf"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"go.ngs.io/periant/internal/domain"
)

// ChunkPolicy bounds the spatial tile read at once from each variable.
type ChunkPolicy struct {
	Y int
	X int
}

// DefaultChunks matches the tiling used for the BIOPERIANT12 grid.
var DefaultChunks = ChunkPolicy{Y: 500, X: 1000}

// Loader opens daily/5-daily output files and concatenates them along
// time_counter.
type Loader struct {
	Chunks   ChunkPolicy
	Parallel bool // Decode files on a worker pool.
	Workers  int  // Worker count in parallel mode; 0 means GOMAXPROCS.

	log logrus.FieldLogger
}

// NewLoader creates a sequential loader using DefaultChunks.
func NewLoader(log logrus.FieldLogger) *Loader {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{Chunks: DefaultChunks, log: log}
}

// ncMu serializes calls into the netCDF C library, which is not
// thread-safe. Decoding runs outside the lock.
var ncMu sync.Mutex

// fileData holds the variables of one file in file order.
type fileData struct {
	path string
	vars []*domain.Variable
}

// Load reads every path and returns the concatenated dataset. Record
// variables are joined along time_counter in path order; everything else
// comes from the first file. A file that cannot be read fails the whole
// load with the offending path in the error.
func (l *Loader) Load(ctx context.Context, paths []string) (*domain.Dataset, error) {
	if len(paths) == 0 {
		return nil, domain.ErrNoFiles
	}

	l.log.WithFields(logrus.Fields{
		"files":    len(paths),
		"parallel": l.Parallel,
	}).Info("Loading datasets")

	files := make([]*fileData, len(paths))
	if l.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		workers := l.Workers
		if workers <= 0 {
			workers = runtime.GOMAXPROCS(0)
		}
		g.SetLimit(workers)
		for i, path := range paths {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				fd, err := l.readFile(path)
				if err != nil {
					return err
				}
				files[i] = fd
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			fd, err := l.readFile(path)
			if err != nil {
				return nil, err
			}
			files[i] = fd
		}
	}

	return concat(files)
}

// readFile decodes every numeric variable of path.
func (l *Loader) readFile(path string) (*fileData, error) {
	fd, packs, err := l.readRaw(path)
	if err != nil {
		return nil, err
	}
	for i, v := range fd.vars {
		packs[i].apply(v.Data)
	}
	return fd, nil
}

// readRaw reads the packed values and packing attributes of every numeric
// variable of path.
func (l *Loader) readRaw(path string) (*fileData, []packing, error) {
	ncMu.Lock()
	defer ncMu.Unlock()

	//nolint:gosec // G304: Path built from configured input directory.
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, nil, fmt.Errorf("%w %s: %w", domain.ErrUnreadableFile, path, err)
	}
	defer func() { _ = nc.Close() }()

	nvars, err := nc.NVars()
	if err != nil {
		return nil, nil, fmt.Errorf("%w %s: %w", domain.ErrUnreadableFile, path, err)
	}

	fd := &fileData{path: path}
	var packs []packing
	for i := 0; i < nvars; i++ {
		v := nc.VarN(i)
		name, err := v.Name()
		if err != nil {
			return nil, nil, fmt.Errorf("%w %s: %w", domain.ErrUnreadableFile, path, err)
		}
		t, err := v.Type()
		if err != nil || !numeric(t) {
			l.log.WithFields(logrus.Fields{"path": path, "variable": name}).Debug("Skipping non-numeric variable")
			continue
		}
		dims, err := dimNames(v)
		if err != nil {
			return nil, nil, fmt.Errorf("%w %s: variable %s: %w", domain.ErrUnreadableFile, path, name, err)
		}
		if len(dims) == 0 {
			continue
		}
		lens, err := v.LenDims()
		if err != nil {
			return nil, nil, fmt.Errorf("%w %s: variable %s: %w", domain.ErrUnreadableFile, path, name, err)
		}

		data, err := readAll(v, lens, l.Chunks.Y, l.Chunks.X)
		if err != nil {
			return nil, nil, fmt.Errorf("%w %s: variable %s: %w", domain.ErrUnreadableFile, path, name, err)
		}
		pack := readPacking(v)

		shape := make([]int, len(lens))
		for k, n := range lens {
			shape[k] = int(n)
		}
		variable := &domain.Variable{
			Name:   name,
			Dims:   dims,
			Shape:  shape,
			Layout: domain.LayoutFor(dims),
			Data:   data,
		}
		for _, attr := range []string{"units", "long_name", "standard_name"} {
			if s, ok := attrString(v, attr); ok {
				if variable.Attrs == nil {
					variable.Attrs = make(map[string]string)
				}
				variable.Attrs[attr] = s
			}
		}
		fd.vars = append(fd.vars, variable)
		packs = append(packs, pack)
	}
	return fd, packs, nil
}

func isRecord(v *domain.Variable) bool {
	return len(v.Dims) > 0 && v.Dims[0] == domain.RawTimeDim
}

func isCoord(v *domain.Variable) bool {
	return len(v.Dims) == 1 && v.Dims[0] == v.Name
}

// concat joins per-file variables into one dataset.
func concat(files []*fileData) (*domain.Dataset, error) {
	first := files[0]
	merged := make([]*domain.Variable, len(first.vars))
	for i, v := range first.vars {
		merged[i] = v.Clone()
	}

	for _, fd := range files[1:] {
		byName := make(map[string]*domain.Variable, len(fd.vars))
		for _, v := range fd.vars {
			byName[v.Name] = v
		}
		for _, m := range merged {
			if !isRecord(m) {
				continue
			}
			v, ok := byName[m.Name]
			if !ok {
				return nil, fmt.Errorf("%w: variable %s missing from %s", domain.ErrShapeMismatch, m.Name, fd.path)
			}
			if !slices.Equal(v.Dims, m.Dims) || !slices.Equal(v.Shape[1:], m.Shape[1:]) {
				return nil, fmt.Errorf("%w: variable %s in %s has dims %v shape %v, expected %v %v",
					domain.ErrShapeMismatch, m.Name, fd.path, v.Dims, v.Shape, m.Dims, m.Shape)
			}
			m.Data = append(m.Data, v.Data...)
			m.Shape[0] += v.Shape[0]
		}
	}

	ds := domain.NewDataset()
	for _, v := range merged {
		if isCoord(v) {
			ds.Coords[v.Name] = v.Data
			continue
		}
		if err := ds.AddVar(v); err != nil {
			return nil, err
		}
	}
	return ds, nil
}
