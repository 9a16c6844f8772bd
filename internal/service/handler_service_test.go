package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"receipt-vault/internal/dto"
)

var _ = Describe("HandlerService", func() {
	var (
		svc    *HandlerService
		input  string
		result dto.HandleResult
	)

	BeforeEach(func() {
		svc = NewHandlerService(nil, zap.NewNop())
	})

	JustBeforeEach(func() {
		var out bytes.Buffer
		err := svc.Handle(context.Background(), strings.NewReader(input), &out)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(out.Bytes(), &result)).To(Succeed())
	})

	When("the payload is not JSON", func() {
		BeforeEach(func() {
			input = "not json at all"
		})

		It("reports an invalid payload", func() {
			Expect(result.OK).To(BeFalse())
			Expect(result.Error).To(ContainSubstring("invalid payload"))
		})
	})

	When("the vendor is missing", func() {
		BeforeEach(func() {
			input = `{"total": 12.34}`
		})

		It("names the missing field", func() {
			Expect(result.OK).To(BeFalse())
			Expect(result.Error).To(Equal("missing Vendor"))
		})
	})

	When("the total is missing", func() {
		BeforeEach(func() {
			input = `{"vendor": "Starbucks"}`
		})

		It("names the missing field", func() {
			Expect(result.OK).To(BeFalse())
			Expect(result.Error).To(Equal("missing Total"))
		})
	})

	When("the vendor sanitizes to nothing", func() {
		BeforeEach(func() {
			input = `{"vendor": "$();|", "total": 5}`
		})

		It("rejects the payload", func() {
			Expect(result.OK).To(BeFalse())
			Expect(result.Error).To(Equal("missing vendor"))
		})
	})

	When("the image path escapes the allowed characters", func() {
		BeforeEach(func() {
			input = `{"vendor": "Starbucks", "total": 5, "image": "a;b.jpg"}`
		})

		It("rejects the path", func() {
			Expect(result.OK).To(BeFalse())
			Expect(result.Error).To(Equal("invalid image path"))
		})
	})
})
