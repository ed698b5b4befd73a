package expr_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ratenet/internal/expr"
)

var _ = Describe("Eval", func() {
	env := expr.Env{"gamma": 1.0, "h_1": 0.5, "h_0": 0.1, "t": 2.0}

	DescribeTable("arithmetic",
		func(src string, want float64) {
			got, err := expr.Eval(src, env)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNumerically("~", want, 1e-12))
		},
		Entry("literal", "3.5", 3.5),
		Entry("scientific literal", "2.5e-3", 0.0025),
		Entry("symbol", "gamma", 1.0),
		Entry("addition", "1+2+3", 6.0),
		Entry("subtraction is left-associative", "10-4-3", 3.0),
		Entry("precedence of product over sum", "2+3*4", 14.0),
		Entry("division", "1/4", 0.25),
		Entry("grouping", "(2+3)*4", 20.0),
		Entry("power", "2^10", 1024.0),
		Entry("power is right-associative", "2^3^2", 512.0),
		Entry("power binds tighter than product", "2*3^2", 18.0),
		Entry("unary minus", "-3+5", 2.0),
		Entry("double negation", "--4", 4.0),
		Entry("unary minus binds tighter than power", "-2^2", 4.0),
		Entry("time symbol", "t^2", 4.0),
		Entry("halfar flux term", "-1*gamma*(h_1-h_0)^3*h_0^5", -6.4e-7),
	)

	It("is deterministic across evaluations", func() {
		e, err := expr.Compile("gamma*(h_1-h_0)^3*h_0^5")
		Expect(err).NotTo(HaveOccurred())
		first, err := e.Eval(env)
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 100; i++ {
			again, err := e.Eval(env)
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(first))
		}
	})

	It("rejects unknown symbols", func() {
		_, err := expr.Eval("gamma*beta", env)
		var exprErr *expr.Error
		Expect(err).To(BeAssignableToTypeOf(exprErr))
		Expect(err.Error()).To(ContainSubstring("unknown symbol beta"))
	})

	It("rejects division by zero", func() {
		_, err := expr.Eval("1/(h_1-0.5)", env)
		Expect(err).To(MatchError(ContainSubstring("division by zero")))
	})
})

var _ = Describe("Compile", func() {
	DescribeTable("malformed input",
		func(src string) {
			_, err := expr.Compile(src)
			Expect(err).To(HaveOccurred())
		},
		Entry("empty", ""),
		Entry("dangling operator", "1+"),
		Entry("unbalanced parens", "(1+2"),
		Entry("adjacent operands", "1 2"),
		Entry("stray character", "a$b"),
		Entry("lone operator", "*"),
	)

	It("reports free symbols", func() {
		e, err := expr.Compile("-1*gamma*(h_1-h_0)^3*h_0^5")
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Vars()).To(Equal([]string{"gamma", "h_0", "h_1"}))
	})

	It("keeps the source text", func() {
		e, err := expr.Compile("1 + t")
		Expect(err).NotTo(HaveOccurred())
		Expect(e.String()).To(Equal("1 + t"))
	})
})
