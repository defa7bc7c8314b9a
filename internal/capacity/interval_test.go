package capacity_test

import (
	"time"

	"github.com/frahmantamala/resource-management/internal/capacity"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Interval overlap", func() {
	r := func(start, end string) capacity.DateRange {
		return capacity.NewDateRange(day(start), day(end))
	}

	Describe("Overlap", func() {
		It("should return the intersection of overlapping ranges", func() {
			window, ok := capacity.Overlap(r("2024-01-01", "2024-01-10"), r("2024-01-05", "2024-01-20"))
			Expect(ok).To(BeTrue())
			Expect(window.Start).To(Equal(day("2024-01-05")))
			Expect(window.End).To(Equal(day("2024-01-10")))
		})

		It("should treat touching boundaries as overlapping", func() {
			window, ok := capacity.Overlap(r("2024-01-01", "2024-01-05"), r("2024-01-05", "2024-01-09"))
			Expect(ok).To(BeTrue())
			Expect(window.Start).To(Equal(day("2024-01-05")))
			Expect(window.End).To(Equal(day("2024-01-05")))
		})

		It("should report no overlap for disjoint ranges", func() {
			_, ok := capacity.Overlap(r("2024-01-01", "2024-01-04"), r("2024-01-05", "2024-01-09"))
			Expect(ok).To(BeFalse())
		})

		It("should report no overlap when a range is malformed", func() {
			Expect(capacity.Overlaps(r("2024-01-10", "2024-01-01"), r("2024-01-01", "2024-01-31"))).To(BeFalse())
			Expect(capacity.Overlaps(r("2024-01-01", "2024-01-31"), r("2024-01-10", "2024-01-01"))).To(BeFalse())
		})

		It("should be symmetric", func() {
			ranges := []capacity.DateRange{
				r("2024-01-01", "2024-01-05"),
				r("2024-01-05", "2024-01-09"),
				r("2024-01-06", "2024-01-06"),
				r("2024-02-01", "2024-03-01"),
				r("2024-01-09", "2024-01-02"),
				r("2023-12-01", "2024-12-31"),
			}
			for _, a := range ranges {
				for _, b := range ranges {
					Expect(capacity.Overlaps(a, b)).To(Equal(capacity.Overlaps(b, a)), "%s vs %s", a, b)
				}
			}
		})

		It("should compare calendar dates regardless of time of day", func() {
			a := capacity.NewDateRange(time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC), time.Date(2024, 1, 5, 23, 59, 0, 0, time.UTC))
			b := capacity.NewDateRange(time.Date(2024, 1, 5, 1, 0, 0, 0, time.UTC), time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC))
			Expect(capacity.Overlaps(a, b)).To(BeTrue())
		})
	})

	Describe("WeekStart", func() {
		It("should return the Monday of the week", func() {
			Expect(capacity.WeekStart(day("2024-01-01"))).To(Equal(day("2024-01-01")))
			Expect(capacity.WeekStart(day("2024-01-03"))).To(Equal(day("2024-01-01")))
			Expect(capacity.WeekStart(day("2024-01-07"))).To(Equal(day("2024-01-01")))
			Expect(capacity.WeekStart(day("2024-01-08"))).To(Equal(day("2024-01-08")))
		})

		It("should span Monday through Sunday", func() {
			week := capacity.WeekRange(day("2024-01-04"))
			Expect(week.Start).To(Equal(day("2024-01-01")))
			Expect(week.End).To(Equal(day("2024-01-07")))
			Expect(week.Days()).To(Equal(7))
		})
	})

	Describe("WeeksIn", func() {
		It("should list every week touched by the range", func() {
			weeks := capacity.WeeksIn(r("2024-01-03", "2024-01-15"))
			Expect(weeks).To(Equal([]time.Time{day("2024-01-01"), day("2024-01-08"), day("2024-01-15")}))
		})

		It("should return nothing for a malformed range", func() {
			Expect(capacity.WeeksIn(r("2024-01-15", "2024-01-03"))).To(BeEmpty())
		})
	})

	Describe("WholeWeeks", func() {
		It("should widen a range to the Mondays and Sundays around it", func() {
			Expect(capacity.WholeWeeks(r("2024-01-03", "2024-01-10"))).To(Equal(r("2024-01-01", "2024-01-14")))
		})

		It("should keep an aligned range as is", func() {
			Expect(capacity.WholeWeeks(r("2024-01-01", "2024-01-07"))).To(Equal(r("2024-01-01", "2024-01-07")))
		})

		It("should leave a malformed range untouched", func() {
			Expect(capacity.WholeWeeks(r("2024-01-15", "2024-01-03"))).To(Equal(r("2024-01-15", "2024-01-03")))
		})
	})

	Describe("ParseDateRange", func() {
		It("should parse ISO dates", func() {
			rng, err := capacity.ParseDateRange("2024-01-01", "2024-01-31")
			Expect(err).NotTo(HaveOccurred())
			Expect(rng.Days()).To(Equal(31))
		})

		It("should reject malformed dates", func() {
			_, err := capacity.ParseDateRange("2024-13-01", "2024-01-31")
			Expect(err).To(HaveOccurred())
		})
	})
})
