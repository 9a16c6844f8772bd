package handlers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"receipt-vault/internal/service"
)

func TestHandlers(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Handlers Suite")
}

var _ = Describe("statusForError", func() {
	It("maps not-found to 404", func() {
		err := fmt.Errorf("getting receipt: %w", service.ErrNotFound)
		Expect(statusForError(err)).To(Equal(fiber.StatusNotFound))
	})

	It("maps a missing confirmation to 428", func() {
		Expect(statusForError(service.ErrConfirmRequired)).To(Equal(fiber.StatusPreconditionRequired))
	})

	It("maps validation failures to 400", func() {
		err := fmt.Errorf("%w: total out of range", service.ErrInvalid)
		Expect(statusForError(err)).To(Equal(fiber.StatusBadRequest))
	})

	It("maps anything else to 500", func() {
		Expect(statusForError(errors.New("connection reset"))).To(Equal(fiber.StatusInternalServerError))
	})
})
