package allocate

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/residents-cli/internal/household"
	"github.com/sells-group/residents-cli/internal/model"
	"github.com/sells-group/residents-cli/internal/tenure"
)

// Method selects the allocation pipeline.
type Method string

const (
	// MethodPool deals household sizes by tenure, then conserves totals.
	MethodPool Method = "pool"
	// MethodQuota splits dwellings, apportions by floor area and recombines.
	MethodQuota Method = "quota"
)

// ParseMethod validates a configured method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodPool, MethodQuota:
		return m, nil
	case "":
		return MethodPool, nil
	}
	return "", eris.Errorf("allocate: unknown method %q", s)
}

// ErrNoWeightingSignal is returned when no parcel in the whole input carries
// the signal the selected method weights by.
var ErrNoWeightingSignal = eris.New("allocate: no usable weighting signal")

// ErrDuplicateRoll is returned when two input parcels share a roll number.
var ErrDuplicateRoll = eris.New("allocate: duplicate roll number")

// Neighbourhood is the unit of allocation: all parcels sharing an id.
type Neighbourhood struct {
	ID         int
	Name       string
	Population *int
	Parcels    []*model.Parcel
}

func (n *Neighbourhood) population() int {
	if n.Population == nil {
		return 0
	}
	return *n.Population
}

// Options configures an Engine.
type Options struct {
	Method       Method
	Seed         uint64
	QuotaMode    QuotaMode
	Distribution *household.Distribution // required by MethodPool
	Classifier   *tenure.Classifier      // nil uses the default code table
}

// Engine runs one allocation over a city.
type Engine struct {
	opts Options
	pool *PoolAllocator
}

// New validates opts and returns an Engine.
func New(opts Options) (*Engine, error) {
	if _, err := ParseMethod(string(opts.Method)); err != nil {
		return nil, err
	}
	if opts.Method == "" {
		opts.Method = MethodPool
	}
	mode, err := ParseQuotaMode(string(opts.QuotaMode))
	if err != nil {
		return nil, err
	}
	opts.QuotaMode = mode
	if opts.Classifier == nil {
		opts.Classifier = tenure.NewClassifier(tenure.DefaultTable())
	}

	e := &Engine{opts: opts}
	if opts.Method == MethodPool {
		if opts.Distribution == nil {
			return nil, eris.New("allocate: pool method requires a household distribution")
		}
		e.pool = NewPoolAllocator(opts.Distribution, opts.Seed)
	}
	return e, nil
}

// Result is the outcome of a run.
type Result struct {
	RunID      string
	Method     Method
	Seed       uint64
	QuotaMode  QuotaMode
	Parcels    []*model.Parcel // one row per input parcel, input order
	Summaries  []model.NeighbourhoodSummary
	Unassigned int // parcels without a neighbourhood id
}

// Totals returns the summed census population and assigned residents over
// all neighbourhoods.
func (r *Result) Totals() (population, assigned int) {
	for _, s := range r.Summaries {
		if s.Population != nil {
			population += *s.Population
		}
		assigned += s.Assigned
	}
	return population, assigned
}

// Run allocates residents to a copy of parcels. Input parcels are not
// modified. Roll numbers must be unique.
func (e *Engine) Run(parcels []*model.Parcel) (*Result, error) {
	res := &Result{
		RunID:     uuid.New().String(),
		Method:    e.opts.Method,
		Seed:      e.opts.Seed,
		QuotaMode: e.opts.QuotaMode,
	}
	log := zap.L().With(
		zap.String("run_id", res.RunID),
		zap.String("method", string(e.opts.Method)),
	)

	work := make([]*model.Parcel, len(parcels))
	seen := make(map[string]bool, len(parcels))
	for i, p := range parcels {
		if seen[p.RollNumber] {
			return nil, eris.Wrapf(ErrDuplicateRoll, "%q", p.RollNumber)
		}
		seen[p.RollNumber] = true
		c := p.Clone()
		c.Tenure = e.opts.Classifier.Classify(p.PropertyUseCode)
		c.Residents = 0
		work[i] = c
	}

	if err := e.checkSignal(work); err != nil {
		return nil, err
	}

	var hoods []*Neighbourhood
	byID := make(map[int]*Neighbourhood)
	for _, p := range work {
		if p.NeighbourhoodID == nil {
			res.Unassigned++
			continue
		}
		n, ok := byID[*p.NeighbourhoodID]
		if !ok {
			n = &Neighbourhood{ID: *p.NeighbourhoodID, Name: p.NeighbourhoodName, Population: p.Population}
			byID[n.ID] = n
			hoods = append(hoods, n)
		}
		n.Parcels = append(n.Parcels, p)
	}

	res.Parcels = work
	for _, n := range hoods {
		var s model.NeighbourhoodSummary
		if e.opts.Method == MethodQuota {
			s = e.runQuota(log, n)
		} else {
			s = e.runPool(log, n)
		}
		res.Summaries = append(res.Summaries, s)
	}

	pop, assigned := res.Totals()
	log.Info("allocate: run complete",
		zap.Int("parcels", len(res.Parcels)),
		zap.Int("neighbourhoods", len(hoods)),
		zap.Int("unassigned_parcels", res.Unassigned),
		zap.Int("population", pop),
		zap.Int("assigned", assigned),
	)
	return res, nil
}

func (e *Engine) checkSignal(parcels []*model.Parcel) error {
	for _, p := range parcels {
		switch e.opts.Method {
		case MethodPool:
			if p.Occupied() {
				return nil
			}
		case MethodQuota:
			if p.Occupied() && p.Area() > 0 {
				return nil
			}
		}
	}
	if e.opts.Method == MethodQuota {
		return eris.Wrap(ErrNoWeightingSignal, "no dwelling with positive floor area")
	}
	return eris.Wrap(ErrNoWeightingSignal, "no parcel with positive dwelling units")
}

func (e *Engine) runPool(log *zap.Logger, n *Neighbourhood) model.NeighbourhoodSummary {
	out := e.pool.Allocate(n)
	residual := 0
	if pop := n.population(); pop > 0 {
		residual = Conserve(n.Parcels, pop)
	}

	s := summarize(n)
	s.PoolExhausted = out.Exhausted
	logNeighbourhood(log, s, residual)
	return s
}

// runQuota splits the neighbourhood's parcels into dwellings, apportions,
// and recombines them back to one row per parcel by roll number.
func (e *Engine) runQuota(log *zap.Logger, n *Neighbourhood) model.NeighbourhoodSummary {
	dwellings := Split(n.Parcels)
	over := Quota(dwellings, n.Population, e.opts.QuotaMode)

	residents := make(map[string]int, len(n.Parcels))
	for _, p := range Recombine(dwellings) {
		residents[p.RollNumber] = p.Residents
	}
	for _, p := range n.Parcels {
		p.Residents = residents[p.RollNumber]
	}

	s := summarize(n)
	if over > 0 {
		log.Debug("allocate: quota overcount kept",
			zap.Int("neighbourhood_id", n.ID),
			zap.Int("overcount", over),
			zap.Int("dwellings", len(dwellings)),
		)
	}
	logNeighbourhood(log, s, s.Residual())
	return s
}

func summarize(n *Neighbourhood) model.NeighbourhoodSummary {
	s := model.NeighbourhoodSummary{
		ID:         n.ID,
		Name:       n.Name,
		Population: n.Population,
		Parcels:    len(n.Parcels),
	}
	for _, p := range n.Parcels {
		s.DwellingUnits += p.DwellingUnits
		s.Assigned += p.Residents
	}
	return s
}

func logNeighbourhood(log *zap.Logger, s model.NeighbourhoodSummary, residual int) {
	fields := []zap.Field{
		zap.Int("neighbourhood_id", s.ID),
		zap.String("name", s.Name),
		zap.Int("parcels", s.Parcels),
		zap.Int("assigned", s.Assigned),
	}
	if s.Population != nil {
		fields = append(fields, zap.Int("population", *s.Population))
	}

	if residual != 0 && s.Population != nil && *s.Population > 0 {
		log.Warn("allocate: neighbourhood total differs from census", append(fields, zap.Int("residual", residual))...)
		return
	}
	log.Debug("allocate: neighbourhood allocated", fields...)
}
