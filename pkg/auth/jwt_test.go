package auth

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

var _ = Describe("JWTManager", func() {
	var manager *JWTManager

	BeforeEach(func() {
		manager = NewJWTManager("test-secret", "test-api-key", time.Hour)
	})

	Describe("Exchange", func() {
		When("the api key matches", func() {
			It("issues a token that validates", func() {
				token, err := manager.Exchange("test-api-key")
				Expect(err).NotTo(HaveOccurred())
				Expect(token).NotTo(BeEmpty())

				claims, err := manager.ValidateToken(token)
				Expect(err).NotTo(HaveOccurred())
				Expect(claims.Subject).To(Equal("receipt-vault-api"))
				Expect(claims.ID).NotTo(BeEmpty())
			})
		})

		When("the api key is wrong", func() {
			It("rejects the exchange", func() {
				_, err := manager.Exchange("wrong")
				Expect(err).To(HaveOccurred())
			})
		})

		When("no api key is configured", func() {
			It("refuses to issue tokens", func() {
				unconfigured := NewJWTManager("test-secret", "", time.Hour)
				_, err := unconfigured.Exchange("")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("ValidateToken", func() {
		When("the token was signed with another secret", func() {
			It("rejects it", func() {
				other := NewJWTManager("other-secret", "test-api-key", time.Hour)
				token, err := other.Exchange("test-api-key")
				Expect(err).NotTo(HaveOccurred())

				_, err = manager.ValidateToken(token)
				Expect(err).To(HaveOccurred())
			})
		})

		When("the token has expired", func() {
			It("rejects it", func() {
				expired := NewJWTManager("test-secret", "test-api-key", -time.Minute)
				token, err := expired.Exchange("test-api-key")
				Expect(err).NotTo(HaveOccurred())

				_, err = manager.ValidateToken(token)
				Expect(err).To(HaveOccurred())
			})
		})

		When("the token is garbage", func() {
			It("rejects it", func() {
				_, err := manager.ValidateToken("not.a.token")
				Expect(err).To(HaveOccurred())
			})
		})
	})
})
