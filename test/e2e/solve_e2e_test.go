package e2e

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/retrolife/retrolife/pkg/config"
	"github.com/retrolife/retrolife/pkg/life"
	"github.com/retrolife/retrolife/pkg/output"
	"github.com/retrolife/retrolife/pkg/solver"
)

var _ = Describe("Reverse solving from configuration", func() {
	var (
		dir    string
		logger *logrus.Logger
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		logger = logrus.New()
		logger.SetLevel(logrus.PanicLevel)
	})

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	solveFromConfig := func(configYAML string) (*solver.Result, *life.Grid, solver.Options) {
		configPath := writeFile("config.yaml", configYAML)
		settings, err := config.Load(configPath)
		Expect(err).ToNot(HaveOccurred())

		target, err := life.LoadFile(settings.Input.TargetStateFile)
		Expect(err).ToNot(HaveOccurred())

		opts, err := settings.SolverOptions()
		Expect(err).ToNot(HaveOccurred())

		problem, err := solver.NewReverseProblem(target, opts, logger)
		Expect(err).ToNot(HaveOccurred())

		result, err := problem.Solve(context.Background())
		Expect(err).ToNot(HaveOccurred())
		return result, target, problem.Options()
	}

	It("finds the rotated blinker behind a blinker", func() {
		targetPath := writeFile("blinker.txt", "000\n111\n000\n")
		result, target, _ := solveFromConfig(`
simulation:
  generations: 1
  boundary_condition: dead
solver:
  backend: single_threaded
  max_solutions: 50
  timeout_seconds: 60
input:
  target_state_file: ` + targetPath + `
`)

		Expect(result.Status).To(Equal(solver.StatusExhausted))
		Expect(result.Predecessors).ToNot(BeEmpty())

		found := false
		for _, predecessor := range result.Predecessors {
			Expect(predecessor.Step(life.Dead).Equal(target)).To(BeTrue())
			if predecessor.String() == "010\n010\n010\n" {
				found = true
			}
		}
		Expect(found).To(BeTrue(), "the rotated blinker must be enumerated")
	})

	It("respects the solution limit", func() {
		targetPath := writeFile("blinker.txt", "000\n111\n000\n")
		result, _, _ := solveFromConfig(`
simulation:
  generations: 1
  boundary_condition: dead
solver:
  backend: single_threaded
  max_solutions: 1
  timeout_seconds: 60
input:
  target_state_file: ` + targetPath + `
`)

		Expect(result.Status).To(Equal(solver.StatusLimitReached))
		Expect(result.Predecessors).To(HaveLen(1))
	})

	It("solves with the parallel backend", func() {
		targetPath := writeFile("block.txt", "0000\n0110\n0110\n0000\n")
		result, target, _ := solveFromConfig(`
simulation:
  generations: 1
  boundary_condition: dead
solver:
  backend: parallel
  max_solutions: 3
  timeout_seconds: 60
  num_threads: 4
input:
  target_state_file: ` + targetPath + `
`)

		Expect(result.Predecessors).ToNot(BeEmpty())
		for _, predecessor := range result.Predecessors {
			Expect(predecessor.Step(life.Dead).Equal(target)).To(BeTrue())
		}
	})

	It("writes solutions and intermediate generations to disk", func() {
		targetPath := writeFile("blinker.txt", "000\n111\n000\n")
		outDir := filepath.Join(dir, "solutions")
		result, _, opts := solveFromConfig(`
simulation:
  generations: 2
  boundary_condition: dead
solver:
  backend: single_threaded
  max_solutions: 1
  timeout_seconds: 60
input:
  target_state_file: ` + targetPath + `
output:
  save_intermediate: true
  output_directory: ` + outDir + `
`)

		Expect(output.Save(outDir, result, opts, true)).To(Succeed())

		saved, err := life.LoadFile(filepath.Join(outDir, "solution_001.txt"))
		Expect(err).ToNot(HaveOccurred())
		Expect(saved.Equal(result.Predecessors[0])).To(BeTrue())

		Expect(filepath.Join(outDir, "solution_001_gen_001.txt")).To(BeAnExistingFile())
		Expect(filepath.Join(outDir, "solution_001_gen_002.txt")).To(BeAnExistingFile())
	})

	It("renders every output format", func() {
		targetPath := writeFile("blinker.txt", "000\n111\n000\n")
		result, target, opts := solveFromConfig(`
simulation:
  generations: 1
  boundary_condition: dead
solver:
  backend: single_threaded
  max_solutions: 2
  timeout_seconds: 60
input:
  target_state_file: ` + targetPath + `
`)

		for _, format := range []output.Format{output.FormatText, output.FormatJSON, output.FormatYAML, output.FormatVisual} {
			rendered, err := output.Render(format, result, target, opts, true)
			Expect(err).ToNot(HaveOccurred())
			Expect(rendered).ToNot(BeEmpty())
		}
	})
})
