// Package monitoring turns a running simulation into an HTTP server, so that
// external tools can observe signals, edit parameters, and control the
// runner. All JSON shapes served here are projections of the stores'
// snapshots; the engine core does not define a wire format.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
	"go.uber.org/zap"

	"github.com/prosimlab/prosim/monitoring/web"
	"github.com/prosimlab/prosim/sim"
)

// Monitor exposes a simulation over HTTP for external observation and
// control.
type Monitor struct {
	runner     *sim.Runner
	signals    *sim.SignalStore
	params     *sim.ParameterStore
	components []sim.Component

	portNumber  int
	openBrowser bool
	logger      *zap.Logger

	cancelRun context.CancelFunc
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{logger: zap.NewNop()}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithLogger sets the logger used by the monitor.
func (m *Monitor) WithLogger(logger *zap.Logger) *Monitor {
	m.logger = logger
	return m
}

// WithBrowserOpen makes StartServer open the dashboard in the default
// browser.
func (m *Monitor) WithBrowserOpen() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterRunner registers the runner that drives the simulation.
func (m *Monitor) RegisterRunner(r *sim.Runner) {
	m.runner = r
}

// RegisterStores registers the simulation's value stores.
func (m *Monitor) RegisterStores(
	signals *sim.SignalStore,
	params *sim.ParameterStore,
) {
	m.signals = signals
	m.params = params
}

// RegisterComponent registers a component to be inspected.
func (m *Monitor) RegisterComponent(c sim.Component) {
	m.components = append(m.components, c)
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	fs := web.GetAssets()
	fServer := http.FileServer(fs)

	r.HandleFunc("/api/run", m.runSimulation)
	r.HandleFunc("/api/pause", m.pauseRunner)
	r.HandleFunc("/api/continue", m.continueRunner)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/status", m.status)
	r.HandleFunc("/api/step/{n}", m.step)
	r.HandleFunc("/api/signals", m.listSignals)
	r.HandleFunc("/api/params", m.listParams)
	r.HandleFunc("/api/params/{name}", m.setParam).Methods("PUT", "POST")
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(fServer)

	return r
}

// StartServer starts the monitor as a web server, on the configured port or
// a random free one.
func (m *Monitor) StartServer() {
	r := m.router()

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	m.logger.Info("monitoring simulation", zap.String("url", url))

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			m.logger.Warn("failed to open browser", zap.Error(err))
		}
	}

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()
}

// runSimulation launches the real-time loop in the background. The loop lives
// until the server-owned context is cancelled; the runner itself refuses a
// second concurrent Run.
func (m *Monitor) runSimulation(w http.ResponseWriter, _ *http.Request) {
	if m.runner.Status().Running {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, "Error: runner is already running")

		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelRun = cancel

	go func() {
		if err := m.runner.Run(ctx); err != nil {
			m.logger.Error("real-time loop failed", zap.Error(err))
		}
	}()

	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) pauseRunner(w http.ResponseWriter, _ *http.Request) {
	m.runner.Pause()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueRunner(w http.ResponseWriter, _ *http.Request) {
	m.runner.Resume()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.runner.Now()
	fmt.Fprintf(w, "{\"now\":%.10f,\"tick\":%d}",
		now.ElapsedSeconds, now.TickCount)
}

func (m *Monitor) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.runner.Status())
}

func (m *Monitor) step(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(mux.Vars(r)["n"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	if err := m.runner.Step(n); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sim.ErrInvalidArgument) {
			status = http.StatusBadRequest
		}

		w.WriteHeader(status)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	writeJSON(w, m.runner.Status())
}

func (m *Monitor) listSignals(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.signals.Snapshot())
}

type paramRsp struct {
	sim.ParamDefinition
	Value float64 `json:"value"`
}

func (m *Monitor) listParams(w http.ResponseWriter, _ *http.Request) {
	defs := m.params.SnapshotDefinitions()

	rsp := make([]paramRsp, 0, len(defs))
	for _, def := range defs {
		value, _ := m.params.TryGet(def.Name)
		rsp = append(rsp, paramRsp{ParamDefinition: def, Value: value})
	}

	writeJSON(w, rsp)
}

type setParamReq struct {
	Value float64 `json:"value"`
}

type setParamRsp struct {
	Name      string  `json:"name"`
	Requested float64 `json:"requested"`
	Applied   float64 `json:"applied"`
	Clamped   bool    `json:"clamped"`
}

// setParam updates a parameter. The response reports both the requested and
// the applied value, so a UI can tell the user when the input was clamped.
func (m *Monitor) setParam(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req setParamReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	if err := m.params.Set(name, req.Value); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sim.ErrUnknownKey) {
			status = http.StatusNotFound
		} else if errors.Is(err, sim.ErrInvalidKey) {
			status = http.StatusBadRequest
		}

		w.WriteHeader(status)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	applied, _ := m.params.TryGet(name)
	writeJSON(w, setParamRsp{
		Name:      name,
		Requested: req.Value,
		Applied:   applied,
		Clamped:   applied != req.Value,
	})
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) sim.Component {
	var component sim.Component
	for _, c := range m.components {
		if c.Name() == name {
			component = c
		}
	}

	if component == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Component not found"))
		dieOnErr(err)
	}

	return component
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	bytes, err := json.Marshal(v)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
