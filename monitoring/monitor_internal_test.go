package monitoring

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/prosimlab/prosim/sim"
)

type constantSource struct {
	*sim.ComponentBase

	signals *sim.SignalStore
}

func (c *constantSource) Reads() []sim.Dependency { return nil }

func (c *constantSource) Writes() []sim.Dependency {
	return []sim.Dependency{sim.Dep[sim.Pressure]("p")}
}

func (c *constantSource) Tick(_ sim.SimTime, _ sim.VTimeInSec) error {
	return c.signals.Set("p", 10)
}

func f64(v float64) *float64 { return &v }

var _ = Describe("Monitor", func() {
	var (
		m       *Monitor
		signals *sim.SignalStore
		params  *sim.ParameterStore
		server  *httptest.Server
	)

	BeforeEach(func() {
		signals = sim.NewSignalStore()
		params = sim.NewParameterStore()

		Expect(params.Define(sim.ParamDefinition{
			Name: "valve.position", Unit: "ratio",
			Default: 0.5, Min: f64(0), Max: f64(1),
		})).To(Succeed())

		source := &constantSource{
			ComponentBase: sim.NewComponentBase("Source"),
			signals:       signals,
		}

		pipeline, err := sim.MakePipelineBuilder().
			WithComponents(source).
			Build()
		Expect(err).ToNot(HaveOccurred())

		runner, err := sim.NewRunner(pipeline, 0.01)
		Expect(err).ToNot(HaveOccurred())

		m = NewMonitor()
		m.RegisterRunner(runner)
		m.RegisterStores(signals, params)
		m.RegisterComponent(source)

		server = httptest.NewServer(m.router())
	})

	AfterEach(func() {
		server.Close()
	})

	It("should report the current time", func() {
		rsp, err := http.Get(server.URL + "/api/now")
		Expect(err).ToNot(HaveOccurred())
		defer rsp.Body.Close()

		var body map[string]float64
		Expect(json.NewDecoder(rsp.Body).Decode(&body)).To(Succeed())
		Expect(body["tick"]).To(BeNumerically("==", 0))
		Expect(body["now"]).To(BeNumerically("==", 0))
	})

	It("should step the runner", func() {
		rsp, err := http.Get(server.URL + "/api/step/5")
		Expect(err).ToNot(HaveOccurred())
		defer rsp.Body.Close()

		var status sim.RunnerStatus
		Expect(json.NewDecoder(rsp.Body).Decode(&status)).To(Succeed())
		Expect(status.TickCount).To(Equal(uint64(5)))
	})

	It("should reject invalid step counts", func() {
		rsp, err := http.Get(server.URL + "/api/step/0")
		Expect(err).ToNot(HaveOccurred())
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("should serve the signal snapshot", func() {
		_, err := http.Get(server.URL + "/api/step/1")
		Expect(err).ToNot(HaveOccurred())

		rsp, err := http.Get(server.URL + "/api/signals")
		Expect(err).ToNot(HaveOccurred())
		defer rsp.Body.Close()

		var snapshot map[string]float64
		Expect(json.NewDecoder(rsp.Body).Decode(&snapshot)).To(Succeed())
		Expect(snapshot).To(HaveKeyWithValue("p", BeNumerically("==", 10)))
	})

	It("should list parameters with metadata", func() {
		rsp, err := http.Get(server.URL + "/api/params")
		Expect(err).ToNot(HaveOccurred())
		defer rsp.Body.Close()

		var body []map[string]any
		Expect(json.NewDecoder(rsp.Body).Decode(&body)).To(Succeed())
		Expect(body).To(HaveLen(1))
		Expect(body[0]["name"]).To(Equal("valve.position"))
		Expect(body[0]["value"]).To(BeNumerically("==", 0.5))
	})

	It("should report clamping when setting a parameter", func() {
		req, _ := http.NewRequest(http.MethodPut,
			server.URL+"/api/params/valve.position",
			bytes.NewBufferString(`{"value":2.0}`))

		rsp, err := http.DefaultClient.Do(req)
		Expect(err).ToNot(HaveOccurred())
		defer rsp.Body.Close()

		var result setParamRsp
		Expect(json.NewDecoder(rsp.Body).Decode(&result)).To(Succeed())
		Expect(result.Requested).To(BeNumerically("==", 2.0))
		Expect(result.Applied).To(BeNumerically("==", 1.0))
		Expect(result.Clamped).To(BeTrue())
	})

	It("should 404 on unknown parameters", func() {
		req, _ := http.NewRequest(http.MethodPut,
			server.URL+"/api/params/missing",
			bytes.NewBufferString(`{"value":1.0}`))

		rsp, err := http.DefaultClient.Do(req)
		Expect(err).ToNot(HaveOccurred())
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("should start the real-time loop", func() {
		rsp, err := http.Get(server.URL + "/api/run")
		Expect(err).ToNot(HaveOccurred())
		rsp.Body.Close()
		Expect(rsp.StatusCode).To(Equal(http.StatusOK))

		Eventually(func() uint64 {
			return m.runner.Status().TickCount
		}).Should(BeNumerically(">", 0))

		rsp, err = http.Get(server.URL + "/api/run")
		Expect(err).ToNot(HaveOccurred())
		rsp.Body.Close()
		Expect(rsp.StatusCode).To(Equal(http.StatusConflict))

		m.cancelRun()
		Eventually(func() bool {
			return m.runner.Status().Running
		}).Should(BeFalse())
	})

	It("should pause and continue the runner", func() {
		_, err := http.Get(server.URL + "/api/pause")
		Expect(err).ToNot(HaveOccurred())
		Expect(m.runner.Paused()).To(BeTrue())

		_, err = http.Get(server.URL + "/api/continue")
		Expect(err).ToNot(HaveOccurred())
		Expect(m.runner.Paused()).To(BeFalse())
	})

	It("should list registered components", func() {
		rsp, err := http.Get(server.URL + "/api/list_components")
		Expect(err).ToNot(HaveOccurred())
		defer rsp.Body.Close()

		var names []string
		Expect(json.NewDecoder(rsp.Body).Decode(&names)).To(Succeed())
		Expect(names).To(Equal([]string{"Source"}))
	})
})
