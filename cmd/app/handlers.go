package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/golang/geo/r2"
	"go.uber.org/zap"

	"github.com/0x0FACED/go-voronoi/pkg/logger"
	"github.com/0x0FACED/go-voronoi/pkg/render"
	"github.com/0x0FACED/go-voronoi/pkg/voronoi"
	"github.com/0x0FACED/go-voronoi/static"
)

const svgWidth = 800

type app struct {
	log   *zap.Logger
	debug bool
}

func (a *app) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", a.diagramHandler)
	mux.HandleFunc("/svg", a.svgHandler)
	mux.HandleFunc("/step", a.stepHandler)
	return mux
}

// params описывает набор станций, общий для всех страниц
type params struct {
	width, height int
	stations      int
	random        bool
	seed          int64
}

func parseParams(r *http.Request) (params, error) {
	p := params{width: 1000, height: 1000, stations: 12}
	if err := r.ParseForm(); err != nil {
		return p, err
	}

	fields := []struct {
		name   string
		dst    *int
		lo, hi int
	}{
		{"width", &p.width, 100, 5000},
		{"height", &p.height, 100, 5000},
		{"stations", &p.stations, 1, 2000},
	}
	for _, f := range fields {
		s := r.Form.Get(f.name)
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return p, fmt.Errorf("%s: %q is not a number", f.name, s)
		}
		if v < f.lo || v > f.hi {
			return p, fmt.Errorf("%s: %d is out of range [%d, %d]", f.name, v, f.lo, f.hi)
		}
		*f.dst = v
	}

	switch r.Form.Get("random") {
	case "true", "on":
		p.random = true
	}
	if s := r.Form.Get("seed"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return p, fmt.Errorf("seed: %q is not a number", s)
		}
		p.seed = seed
	} else if p.random {
		p.seed = time.Now().UnixNano()
	}
	return p, nil
}

// query повторяет параметры в ссылках, чтобы /svg и /step показывали ту же диаграмму
func (p params) query() string {
	v := url.Values{}
	v.Set("width", strconv.Itoa(p.width))
	v.Set("height", strconv.Itoa(p.height))
	v.Set("stations", strconv.Itoa(p.stations))
	if p.random {
		v.Set("random", "true")
		v.Set("seed", strconv.FormatInt(p.seed, 10))
	}
	return v.Encode()
}

func (p params) sites() []r2.Point {
	if p.random {
		return generateRandStations(p.stations, p.width, p.height, p.seed)
	}
	return generateFixStations(p.stations, p.width, p.height)
}

func (p params) boundary() voronoi.Polygon {
	return voronoi.NewBoundingBox(0, float64(p.width), 0, float64(p.height))
}

// sweepLogger пишет в лог сервера только итоги построения
func (a *app) sweepLogger() *zap.Logger {
	return a.log.Named("sweep").WithOptions(zap.IncreaseLevel(zap.InfoLevel))
}

func prepareScatter(scatter *charts.Scatter) {
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Height: "580px",
			Width:  "1020px",
		}),
		charts.WithLegendOpts(opts.Legend{
			TextStyle: &opts.TextStyle{
				Color: "white",
			},
			Right: "10%",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:                "Диаграмма Вороного (Форчун)",
			TitleBackgroundColor: "white",
			Left:                 "10%",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "value",
			Name: "Ширина",
			AxisLabel: &opts.AxisLabel{
				Color: "white",
			},
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(false),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Name: "Высота",
			AxisLabel: &opts.AxisLabel{
				Color: "white",
			},
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(false),
			},
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			FilterMode: "none",
			Orient:     "horizontal",
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			FilterMode: "none",
			Orient:     "vertical",
		}),
	)
}

// Преобразуем ребра диаграммы в Echarts для отображения
func voronoiToEcharts(stations []r2.Point, diagram *voronoi.Diagram) *charts.Scatter {
	scatter := charts.NewScatter()

	points := make([]opts.ScatterData, 0, len(stations))
	for _, station := range stations {
		points = append(points, opts.ScatterData{
			Value: []float64{station.X, station.Y},
		})
	}

	prepareScatter(scatter)

	scatter.AddSeries("Станции", points).
		SetSeriesOptions(
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color: "lightgreen",
			}),
		)

	for _, edge := range diagram.Edges() {
		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithXAxisOpts(opts.XAxis{Show: opts.Bool(true)}),
			charts.WithYAxisOpts(opts.YAxis{Show: opts.Bool(true)}),
		)

		line.AddSeries("Границы", []opts.LineData{
			{Value: []float64{edge[0].X, edge[0].Y}},
			{Value: []float64{edge[1].X, edge[1].Y}},
		}).SetSeriesOptions(
			charts.WithLineStyleOpts(opts.LineStyle{
				Width: 2,
			}),
		)

		scatter.Overlap(line)
	}

	return scatter
}

// http обработчик страницы с диаграмой и формой для ввода данных
func (a *app) diagramHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	p, err := parseParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	level := zap.InfoLevel
	if a.debug {
		level = zap.DebugLevel
	}
	pageLog := logger.New(logger.WithLevel(level))
	defer pageLog.ClearLogs()

	stations := p.sites()
	diagram, err := voronoi.Build(stations, p.boundary(), voronoi.WithLogger(pageLog.Zap()))
	if err != nil {
		a.log.Error("[app] Ошибка построения диаграммы", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	pageLog.Info("[app] Площадь ячеек", zap.Float64("area", diagram.Area()), zap.Int("cells", diagram.NumCells()))

	var page bytes.Buffer
	fmt.Fprintln(&page, static.Part1)
	if err := voronoiToEcharts(stations, diagram).Render(&page); err != nil {
		a.log.Error("[app] Ошибка рендеринга диаграммы", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	q := p.query()
	fmt.Fprintf(&page, static.Links, q, q)
	fmt.Fprintln(&page, static.Part2)
	// Вставляем логи в HTML
	fmt.Fprintln(&page, pageLog.HTML())
	fmt.Fprintln(&page, static.Part3)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page.WriteTo(w)
}

// svgHandler отдает готовую диаграмму картинкой
func (a *app) svgHandler(w http.ResponseWriter, r *http.Request) {
	p, err := parseParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	diagram, err := voronoi.Build(p.sites(), p.boundary(), voronoi.WithLogger(a.sweepLogger()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := render.Diagram(&buf, diagram, svgWidth); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	buf.WriteTo(w)
}

// stepHandler отдает состояние заметания после шага n
func (a *app) stepHandler(w http.ResponseWriter, r *http.Request) {
	p, err := parseParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n, err := strconv.Atoi(r.Form.Get("n"))
	if err != nil || n < 0 {
		http.Error(w, "n: want a non-negative step number", http.StatusBadRequest)
		return
	}

	stations := p.sites()
	v, err := voronoi.New(stations, p.boundary(), voronoi.WithLogger(a.sweepLogger()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	// снимок строится только для шага n
	frame, steps, ok, err := render.Seek(v, n)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, fmt.Sprintf("step %d: the sweep has %d steps", n, steps), http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := render.Snapshot(&buf, frame.Snapshot, stations, p.boundary(), svgWidth); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Voronoi-Steps", strconv.Itoa(steps))
	w.Header().Set("X-Voronoi-Notification", frame.Notification.String())
	buf.WriteTo(w)
}
