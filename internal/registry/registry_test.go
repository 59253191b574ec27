package registry_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/ollama-proxy/internal/registry"
)

func TestRegistry(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Registry Suite")
}

var _ = Describe("Parse", func() {
	It("should parse name:host:port entries", func() {
		entries, skipped := registry.Parse("a:localhost:11434,b:localhost:11435")
		Expect(skipped).To(BeEmpty())
		Expect(entries).To(Equal([]registry.Entry{
			{Name: "a", BaseURL: "http://localhost:11434"},
			{Name: "b", BaseURL: "http://localhost:11435"},
		}))
	})

	It("should assume localhost for name:port entries", func() {
		entries, skipped := registry.Parse("fast:11500")
		Expect(skipped).To(BeEmpty())
		Expect(entries).To(Equal([]registry.Entry{
			{Name: "fast", BaseURL: "http://localhost:11500"},
		}))
	})

	It("should skip malformed entries without failing", func() {
		entries, skipped := registry.Parse("a:localhost:11434,bogus,b:11435")
		Expect(entries).To(HaveLen(2))
		Expect(skipped).To(Equal([]string{"bogus"}))
	})

	It("should skip entries with too many separators", func() {
		entries, skipped := registry.Parse("a:b:c:d")
		Expect(entries).To(BeEmpty())
		Expect(skipped).To(Equal([]string{"a:b:c:d"}))
	})

	It("should trim whitespace around entries", func() {
		entries, skipped := registry.Parse(" a:localhost:11434 , b:11435 ")
		Expect(skipped).To(BeEmpty())
		Expect(entries[0].Name).To(Equal("a"))
		Expect(entries[1].BaseURL).To(Equal("http://localhost:11435"))
	})

	It("should be idempotent over the same input", func() {
		first, _ := registry.Parse("a:localhost:11434,b:localhost:11435")
		second, _ := registry.Parse("a:localhost:11434,b:localhost:11435")
		Expect(second).To(Equal(first))
	})

	It("should produce nothing for an empty string", func() {
		entries, skipped := registry.Parse("")
		Expect(entries).To(BeEmpty())
		Expect(skipped).To(BeEmpty())
	})
})

var _ = Describe("Registry", func() {
	Context("with configured instances", func() {
		var reg *registry.Registry

		BeforeEach(func() {
			entries, _ := registry.Parse("a:localhost:11434,b:localhost:11435")
			reg = registry.New(entries)
		})

		It("should resolve known names", func() {
			Expect(reg.Resolve("a")).To(Equal("http://localhost:11434"))
			Expect(reg.Resolve("b")).To(Equal("http://localhost:11435"))
		})

		It("should fall back to the default for unknown names", func() {
			Expect(reg.Resolve("unknown")).To(Equal("http://localhost:11434"))
			Expect(reg.Resolve("")).To(Equal("http://localhost:11434"))
		})

		It("should designate the first entry as default", func() {
			Expect(reg.Default()).To(Equal("http://localhost:11434"))
		})

		It("should report membership", func() {
			Expect(reg.Has("a")).To(BeTrue())
			Expect(reg.Has("c")).To(BeFalse())
		})

		It("should return names in configuration order", func() {
			Expect(reg.Names()).To(Equal([]string{"a", "b"}))
		})
	})

	Context("with duplicate names", func() {
		It("should let the last URL win but keep the first position", func() {
			entries, _ := registry.Parse("a:localhost:11434,b:localhost:11435,a:localhost:11436")
			reg := registry.New(entries)
			Expect(reg.Resolve("a")).To(Equal("http://localhost:11436"))
			Expect(reg.Names()).To(Equal([]string{"a", "b"}))
			Expect(reg.Default()).To(Equal("http://localhost:11436"))
		})
	})

	Context("with no usable configuration", func() {
		It("should substitute the hardcoded fallback", func() {
			reg := registry.New(nil)
			Expect(reg.Default()).To(Equal(registry.FallbackURL))
			Expect(reg.Names()).To(Equal([]string{"default"}))
		})

		It("should substitute the fallback when every entry is malformed", func() {
			entries, skipped := registry.Parse("nonsense")
			Expect(skipped).To(HaveLen(1))
			reg := registry.New(entries)
			Expect(reg.Default()).To(Equal(registry.FallbackURL))
		})
	})
})
