package service

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

var _ = Describe("classifyQuery", func() {
	var (
		text   string
		result *trigger
	)

	JustBeforeEach(func() {
		result = classifyQuery(text)
	})

	When("asking where an item was bought", func() {
		BeforeEach(func() {
			text = "查吹风机在哪个收据"
		})

		It("classifies as a search", func() {
			Expect(result).NotTo(BeNil())
			Expect(result.kind).To(Equal("search"))
			Expect(result.item).To(Equal("吹风机"))
		})
	})

	When("listing a month and category", func() {
		BeforeEach(func() {
			text = "列出2月购物类收据"
		})

		It("classifies as a list with the bare month", func() {
			Expect(result).NotTo(BeNil())
			Expect(result.kind).To(Equal("list"))
			Expect(result.month).To(Equal("2"))
			Expect(result.category).To(Equal("购物"))
		})
	})

	When("asking for a month summary", func() {
		BeforeEach(func() {
			text = "汇总 2026-02"
		})

		It("classifies as a summary", func() {
			Expect(result).NotTo(BeNil())
			Expect(result.kind).To(Equal("summary"))
			Expect(result.month).To(Equal("2026-02"))
		})
	})

	When("the summary word appears without a month", func() {
		BeforeEach(func() {
			text = "汇总一下"
		})

		It("stays unmatched", func() {
			Expect(result).To(BeNil())
		})
	})

	When("the text matches no trigger", func() {
		BeforeEach(func() {
			text = "how much did I spend"
		})

		It("stays unmatched", func() {
			Expect(result).To(BeNil())
		})
	})
})

var _ = Describe("QueryService", func() {
	var svc *QueryService

	BeforeEach(func() {
		svc = NewQueryService(nil, zap.NewNop())
	})

	When("dispatching empty text", func() {
		It("rejects the query", func() {
			_, err := svc.Dispatch(context.Background(), "   ", 20)
			Expect(err).To(MatchError(ErrInvalid))
		})
	})

	When("dispatching unrecognized text", func() {
		It("returns usage hints without touching the store", func() {
			res, err := svc.Dispatch(context.Background(), "what did I buy", 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Kind).To(Equal("unrecognized"))
			Expect(res.Hints).To(HaveLen(3))
		})
	})
})
