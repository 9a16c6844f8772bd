package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestStorage(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Storage Suite")
}

var _ = Describe("LocalStorage", func() {
	var (
		root  string
		store *LocalStorage
	)

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		var err error
		store, err = NewLocalStorage(root)
		Expect(err).NotTo(HaveOccurred())
	})

	writeFile := func(name string, content []byte) string {
		path := filepath.Join(GinkgoT().TempDir(), name)
		Expect(os.WriteFile(path, content, 0o644)).To(Succeed())
		return path
	}

	Describe("SaveDedup", func() {
		It("stores the file under its digest with the source extension", func() {
			src := writeFile("receipt.PNG", []byte("pixels"))

			rel, digest, err := store.SaveDedup(src)
			Expect(err).NotTo(HaveOccurred())

			sum := sha256.Sum256([]byte("pixels"))
			Expect(digest).To(Equal(hex.EncodeToString(sum[:])))
			Expect(rel).To(Equal(filepath.Join("images", digest+".png")))

			stored, err := os.ReadFile(store.Resolve(rel))
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(Equal([]byte("pixels")))
		})

		It("defaults the extension to .jpg", func() {
			src := writeFile("noext", []byte("pixels"))

			rel, digest, err := store.SaveDedup(src)
			Expect(err).NotTo(HaveOccurred())
			Expect(rel).To(Equal(filepath.Join("images", digest+".jpg")))
		})

		It("is idempotent for identical content", func() {
			first := writeFile("a.jpg", []byte("same bytes"))
			second := writeFile("b.jpg", []byte("same bytes"))

			relA, digestA, err := store.SaveDedup(first)
			Expect(err).NotTo(HaveOccurred())
			relB, digestB, err := store.SaveDedup(second)
			Expect(err).NotTo(HaveOccurred())

			Expect(digestB).To(Equal(digestA))
			Expect(relB).To(Equal(relA))

			entries, err := os.ReadDir(filepath.Join(root, "images"))
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
		})

		It("stores different content under different names", func() {
			first := writeFile("a.jpg", []byte("one"))
			second := writeFile("b.jpg", []byte("two"))

			relA, _, err := store.SaveDedup(first)
			Expect(err).NotTo(HaveOccurred())
			relB, _, err := store.SaveDedup(second)
			Expect(err).NotTo(HaveOccurred())

			Expect(relB).NotTo(Equal(relA))
		})

		It("fails on a missing source file", func() {
			_, _, err := store.SaveDedup(filepath.Join(root, "nope.jpg"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Delete", func() {
		It("removes a stored file", func() {
			src := writeFile("a.jpg", []byte("bytes"))
			rel, _, err := store.SaveDedup(src)
			Expect(err).NotTo(HaveOccurred())

			Expect(store.Delete(rel)).To(Succeed())
			_, err = os.Stat(store.Resolve(rel))
			Expect(os.IsNotExist(err)).To(BeTrue())
		})
	})
})
