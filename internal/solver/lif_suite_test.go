package solver_test

import (
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/odyn/internal/methods"
	"github.com/san-kum/odyn/internal/models"
	"github.com/san-kum/odyn/internal/ode"
	"github.com/san-kum/odyn/internal/solver"
)

func TestSolver(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Solver Suite")
}

// spikeTimes picks out the reset samples: the membrane potential drops
// from near threshold to VReset in a single entry.
func spikeTimes(sol *ode.Solution, reset, threshold float64) []float64 {
	var out []float64
	for i := 1; i < sol.Len(); i++ {
		if sol.States[i][0] == reset && sol.States[i-1][0] > threshold/2 {
			out = append(out, sol.Times[i])
		}
	}
	return out
}

var _ = Describe("leaky integrate-and-fire run", func() {
	var (
		neuron *models.LIF
		sol    *ode.Solution
	)

	BeforeEach(func() {
		neuron = models.NewLIF()

		prob, err := neuron.Problem(0, 20)
		Expect(err).NotTo(HaveOccurred())

		cbs, err := neuron.Callbacks()
		Expect(err).NotTo(HaveOccurred())

		opts := ode.DefaultOptions()
		opts.MaxDt = 0.2

		sol, err = solver.Solve(prob, methods.NewDopri5(), opts, cbs, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Status).To(Equal(ode.Success))
	})

	It("stays silent before the first input bump", func() {
		for i, tt := range sol.Times {
			if tt >= 2 {
				break
			}
			Expect(sol.States[i][0]).To(BeZero(), "membrane moved at t=%v", tt)
		}
	})

	It("never samples above the threshold", func() {
		for i := range sol.States {
			Expect(sol.States[i][0]).To(BeNumerically("<=", neuron.Threshold+1e-6))
		}
	})

	It("locates the first spike on the analytic crossing", func() {
		spikes := spikeTimes(sol, neuron.VReset, neuron.Threshold)
		Expect(spikes).NotTo(BeEmpty())

		// v(t) = 1.5*(1 - exp(-(t-2))) crosses 1 at t = 2 + ln 3
		want := 2 + math.Log(3)
		Expect(spikes[0]).To(BeNumerically("~", want, 1e-4))
	})

	It("fires at the regular inter-spike interval between bumps", func() {
		spikes := spikeTimes(sol, neuron.VReset, neuron.Threshold)
		Expect(len(spikes)).To(BeNumerically(">=", 4))

		isi := math.Log(3)
		for i := 1; i < len(spikes) && spikes[i] < 15; i++ {
			Expect(spikes[i] - spikes[i-1]).To(BeNumerically("~", isi, 1e-3))
		}
	})

	It("fires faster after the second bump raises the drive", func() {
		spikes := spikeTimes(sol, neuron.VReset, neuron.Threshold)

		var before, after []float64
		for i := 1; i < len(spikes); i++ {
			gap := spikes[i] - spikes[i-1]
			if spikes[i] < 15 {
				before = append(before, gap)
			} else if spikes[i-1] > 15 {
				after = append(after, gap)
			}
		}
		Expect(before).NotTo(BeEmpty())
		Expect(after).NotTo(BeEmpty())

		// input 3.0: v crosses 1 after ln(3/2) instead of ln 3
		Expect(after[0]).To(BeNumerically("~", math.Log(1.5), 1e-3))
		Expect(after[0]).To(BeNumerically("<", before[0]/2))
	})

	It("counts every spike in the run parameters", func() {
		spikes := spikeTimes(sol, neuron.VReset, neuron.Threshold)
		Expect(sol.FinalParams["spikes"]).To(Equal(float64(len(spikes))))
	})

	It("lands both bump times bit-exactly", func() {
		hit := map[float64]bool{}
		for _, tt := range sol.Times {
			for _, bump := range neuron.BumpTimes {
				if tt == bump {
					hit[bump] = true
				}
			}
		}
		for _, bump := range neuron.BumpTimes {
			Expect(hit[bump]).To(BeTrue(), "bump time %v not sampled", bump)
		}
	})
})
