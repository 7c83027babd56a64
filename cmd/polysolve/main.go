// Command polysolve exposes the algebra engine on the command line and as
// an HTTP tool endpoint.
//
// Expressions are given in the engine's JSON form, either as an argument or
// on stdin:
//
//	polysolve factor '{"type":"add","terms":[...]}'
//	polysolve serve --port 8080
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	polysolve "github.com/mbrennan-go/polysolve"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func main() {
	root := &cobra.Command{
		Use:           "polysolve",
		Short:         "exact polynomial and rational algebra engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Float64("radius", polysolve.DefaultSettings().SearchRadius, "numeric root search radius")
	root.PersistentFlags().Float64("epsilon", polysolve.DefaultSettings().Epsilon, "numeric convergence tolerance")
	root.PersistentFlags().Int32("precision", polysolve.DefaultSettings().Precision, "decimal places for numeric roots")
	for _, name := range []string{"radius", "epsilon", "precision"} {
		if err := viper.BindPFlag(name, root.PersistentFlags().Lookup(name)); err != nil {
			log.Fatal(err)
		}
	}
	viper.SetEnvPrefix("POLYSOLVE")
	viper.AutomaticEnv()

	root.AddCommand(
		exprCommand("factor", "factor an expression"),
		exprCommand("expand", "expand an expression"),
		exprCommand("simplify", "simplify an expression"),
		newSolveCommand(),
		newRootsCommand(),
		newDivideCommand(),
		newApartCommand(),
		newServeCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func settingsFromFlags() polysolve.Settings {
	st := polysolve.DefaultSettings()
	st.SearchRadius = viper.GetFloat64("radius")
	st.Epsilon = viper.GetFloat64("epsilon")
	st.Precision = viper.GetInt32("precision")
	return st
}

// readExpr parses one JSON expression from the argument at position i, or
// from stdin when no argument was given.
func readExpr(args []string, i int) (polysolve.Expr, error) {
	var raw []byte
	if len(args) > i {
		raw = []byte(args[i])
	} else {
		var err error
		raw, err = io.ReadAll(io.LimitReader(os.Stdin, maxBodyBytes))
		if err != nil {
			return nil, err
		}
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("invalid expression JSON: %w", err)
	}
	return polysolve.FromJSON(obj)
}

func printExpr(e polysolve.Expr) error {
	js, err := polysolve.ToJSON(e)
	if err != nil {
		return err
	}
	fmt.Println(e.String())
	fmt.Println(js)
	return nil
}

func exprCommand(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " [expr-json]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := readExpr(args, 0)
			if err != nil {
				return err
			}
			var out polysolve.Expr
			switch name {
			case "factor":
				out = polysolve.Factor(e)
			case "expand":
				out = polysolve.Expand(e)
			default:
				out = polysolve.SimplifyExpr(e)
			}
			return printExpr(out)
		},
	}
}

func newSolveCommand() *cobra.Command {
	var variable string
	cmd := &cobra.Command{
		Use:   "solve [lhs-json] [rhs-json]",
		Short: "solve lhs = rhs for a variable",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lhs, err := readExpr(args, 0)
			if err != nil {
				return err
			}
			rhs, err := readExpr(args, 1)
			if err != nil {
				return err
			}
			eq, err := polysolve.NewEquation(lhs, rhs)
			if err != nil {
				return err
			}
			sols, err := polysolve.NewSolver().WithSettings(settingsFromFlags()).Solve(eq, variable)
			if err != nil {
				return err
			}
			for _, s := range sols {
				fmt.Println(s.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&variable, "var", "", "variable to solve for (inferred when unique)")
	return cmd
}

func newRootsCommand() *cobra.Command {
	var variable string
	cmd := &cobra.Command{
		Use:   "roots [expr-json]",
		Short: "find all roots of a polynomial",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := readExpr(args, 0)
			if err != nil {
				return err
			}
			rs, err := polysolve.Roots(e, variable)
			if err != nil {
				return err
			}
			for _, r := range rs {
				fmt.Println(r.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&variable, "var", "", "polynomial variable (inferred when unique)")
	return cmd
}

func newDivideCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "divide [dividend-json] [divisor-json]",
		Short: "polynomial division with remainder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readExpr(args, 0)
			if err != nil {
				return err
			}
			b, err := readExpr(args, 1)
			if err != nil {
				return err
			}
			q, r, err := polysolve.Divide(a, b)
			if err != nil {
				return err
			}
			fmt.Println("quotient: ", q.String())
			fmt.Println("remainder:", r.String())
			return nil
		},
	}
}

func newApartCommand() *cobra.Command {
	var variable string
	cmd := &cobra.Command{
		Use:   "apart [expr-json]",
		Short: "partial fraction decomposition",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := readExpr(args, 0)
			if err != nil {
				return err
			}
			out, err := polysolve.PartialFractions(e, variable)
			if err != nil {
				return err
			}
			return printExpr(out)
		},
	}
	cmd.Flags().StringVar(&variable, "var", "", "variable (inferred when unique)")
	return cmd
}

func newServeCommand() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the engine as an HTTP tool endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			mux := http.NewServeMux()

			mux.HandleFunc("/tool", func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if rec := recover(); rec != nil {
						log.Printf("panic in /tool: %v\n%s", rec, string(debug.Stack()))
						http.Error(w, "internal server error", http.StatusInternalServerError)
					}
				}()

				if r.Method != http.MethodPost {
					http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
					return
				}

				r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
				defer r.Body.Close()

				dec := json.NewDecoder(r.Body)
				dec.DisallowUnknownFields()

				var req polysolve.ToolRequest
				if err := dec.Decode(&req); err != nil {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusBadRequest)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
					return
				}
				if dec.More() {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusBadRequest)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid JSON: trailing data"})
					return
				}

				resp := polysolve.HandleToolCall(req)
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			})

			// GET /schema — tool schema for agent registration
			mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, polysolve.ToolSpec())
			})

			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"status": "ok",
					"time":   time.Now().UTC().Format(time.RFC3339),
				})
			})

			addr := fmt.Sprintf(":%d", port)
			log.Printf("polysolve tool server listening on %s", addr)
			log.Printf("  POST /tool   — execute a tool call")
			log.Printf("  GET  /schema — tool schema for agent registration")
			log.Printf("  GET  /health — health check")

			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      35 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			return srv.ListenAndServe()
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	return cmd
}
