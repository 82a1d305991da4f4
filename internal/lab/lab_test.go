package lab_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/battsim/internal/config"
	"github.com/san-kum/battsim/internal/lab"
	"github.com/san-kum/battsim/internal/params"
	"github.com/san-kum/battsim/internal/protocol"
	"github.com/san-kum/battsim/internal/series"
	"github.com/san-kum/battsim/internal/solver"
)

var _ = Describe("Lab", func() {
	var (
		l   *lab.Lab
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		l = lab.New(solver.NewCell(), config.DefaultConfig())
	})

	Describe("Cycling", func() {
		It("produces the lithium and capacity groups", func() {
			result := l.Cycling(ctx, lab.Request{})

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Groups).To(HaveLen(2))
			Expect(result.Groups[0].Title).To(Equal("Total Lithium in electrodes"))
			Expect(result.Groups[1].Title).To(Equal("Capacity over Cycles"))

			// Three variables, each preceded by its cycle axis.
			lithium := result.Groups[0].Graphs
			Expect(lithium).To(HaveLen(6))
			Expect(lithium[0].Name).To(Equal(series.CycleAxisName))
			Expect(lithium[1].FName).To(Equal("Positive"))
			Expect(lithium[3].FName).To(Equal("Negative"))
			Expect(lithium[5].FName).To(Equal("Total"))

			capacity := result.Groups[1].Graphs
			Expect(capacity).To(HaveLen(2))
			Expect(capacity[1].FName).To(Equal("Capacity"))
			Expect(capacity[0].Values).To(HaveLen(len(capacity[1].Values)))
			Expect(capacity[1].Values).NotTo(BeEmpty())
		})

		It("spaces the cycle axis from zero to the cycle count", func() {
			result := l.Cycling(ctx, lab.Request{})
			Expect(result.Err).NotTo(HaveOccurred())

			axis := result.Groups[1].Graphs[0].Values
			Expect(axis[0]).To(Equal(0.0))
			Expect(axis[len(axis)-1]).To(BeNumerically("~", float64(config.DefaultCycles), 1e-9))
		})

		It("accepts a silicon percentage override", func() {
			result := l.Cycling(ctx, lab.Request{SiliconPercentage: 0.5})
			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Groups).NotTo(BeEmpty())
		})
	})

	Describe("RateSweep", func() {
		It("defaults to a 1C discharge sweep of NMC", func() {
			result := l.RateSweep(ctx, lab.Request{})

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Groups).To(HaveLen(1))
			Expect(result.Groups[0].Title).To(Equal("Discharging at different C Rates"))

			graphs := result.Groups[0].Graphs
			Expect(graphs).To(HaveLen(2))
			Expect(graphs[0].Name).To(Equal(solver.VarDischargeCapacity))
			Expect(graphs[1].Name).To(Equal(solver.VarVoltage))
			Expect(graphs[1].FName).To(Equal("1C"))
			Expect(graphs[1].Values).NotTo(BeEmpty())
		})

		It("labels charge sweeps and switches the capacity axis", func() {
			result := l.RateSweep(ctx, lab.Request{Mode: "Charge", CRates: []float64{0.5, 1}})

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Groups[0].Title).To(Equal("Charging at different C Rates"))

			graphs := result.Groups[0].Graphs
			Expect(graphs).To(HaveLen(4))
			Expect(graphs[0].Name).To(Equal(solver.VarThroughputCapacity))
			Expect(graphs[1].FName).To(Equal("0.5C"))
			Expect(graphs[3].FName).To(Equal("1C"))
		})

		It("completes at low and high rates for every chemistry with a voltage window", func() {
			for _, name := range params.List() {
				limits, err := params.Limits(name)
				if errors.Is(err, params.ErrNoVoltageLimits) {
					continue
				}
				Expect(err).NotTo(HaveOccurred())

				for _, m := range []string{"Discharge", "Charge"} {
					result := l.RateSweep(ctx, lab.Request{
						BatteryType: name,
						Mode:        m,
						CRates:      []float64{0.1, 0.5, 2},
					})
					Expect(result.Err).NotTo(HaveOccurred(), "%s %s", name, m)

					cutoff := limits.MinV
					if m == "Charge" {
						cutoff = limits.MaxV
					}

					graphs := result.Groups[0].Graphs
					Expect(graphs).To(HaveLen(6), "%s %s", name, m)
					// Odd indices are the voltage traces, one per rate.
					for i := 1; i < len(graphs); i += 2 {
						trace := graphs[i].Values
						Expect(trace).NotTo(BeEmpty(), "%s %s %s", name, m, graphs[i].FName)
						Expect(trace[len(trace)-1]).To(BeNumerically("~", cutoff, 0.15),
							"%s %s %s", name, m, graphs[i].FName)
					}
				}
			}
		})

		It("rejects unknown chemistries with the error envelope", func() {
			result := l.RateSweep(ctx, lab.Request{BatteryType: "Plutonium"})

			Expect(result.Err).To(MatchError(params.ErrUnknownChemistry))

			raw, err := json.Marshal(result)
			Expect(err).NotTo(HaveOccurred())

			var msgs []string
			Expect(json.Unmarshal(raw, &msgs)).To(Succeed())
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0]).To(HavePrefix("ERROR: "))
		})

		It("rejects chemistries without voltage limits", func() {
			result := l.RateSweep(ctx, lab.Request{BatteryType: "LG M50"})
			Expect(result.Err).To(MatchError(params.ErrNoVoltageLimits))
		})

		It("rejects an explicitly empty rate list", func() {
			result := l.RateSweep(ctx, lab.Request{CRates: []float64{}})
			Expect(result.Err).To(MatchError(protocol.ErrEmptyRateList))
		})
	})
})
