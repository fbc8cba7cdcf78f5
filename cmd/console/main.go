package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/defistate/defistate-aggregator-go/aggregator"
	"github.com/defistate/defistate-aggregator-go/amm"
	"github.com/defistate/defistate-aggregator-go/engine"
	"github.com/defistate/defistate-aggregator-go/protocols/tokenpoolregistry"
	"github.com/defistate/defistate-aggregator-go/protocols/tokenregistry"
	v3calc "github.com/defistate/defistate-aggregator-go/protocols/uniswapv3/calculator"
	"github.com/defistate/defistate-aggregator-go/streams/jsonrpc/client"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// --- VISUAL CONSTANTS ---
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
	Gray   = "\033[37m"

	DefaultSwapBufferSize = 100
	DefaultRecentSwaps    = 20
	DefaultSlippageBps    = 50
	DefaultRequestTimeout = 10 * time.Second
	DefaultRouterURL      = "ws://127.0.0.1:8545"
	DefaultConsoleLogFile = "console.log"
	watchRefreshInterval  = 100 * time.Millisecond
	maxSlippageBps        = 10_000
	consoleVersion        = "v0.1.0"
)

// header prints a styled section header
func header(title string) {
	fmt.Println("\n" + Bold + Cyan + ":: " + title + " ::" + Reset)
}

// console holds what the command handlers share.
type console struct {
	ctx     context.Context
	router  *client.RouterClient
	swaps   *SwapLog
	account *common.Address
	reader  *bufio.Reader

	// streaming is cleared once the swap stream gives up.
	streaming atomic.Bool
}

func main() {
	url := flag.String("url", DefaultRouterURL, "routerd endpoint. Swap streaming needs a ws:// URL.")
	accountFlag := flag.String("account", "", "Default trader account for balances and swaps.")
	logPath := flag.String("log", DefaultConsoleLogFile, "Path of the console log file.")
	flag.Parse()

	// --- 1. SETUP LOGGING (To File) ---
	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		panic(fmt.Sprintf("Failed to open log file: %v", err))
	}
	defer logFile.Close()

	rootLogger := slog.New(slog.NewJSONHandler(logFile, nil))

	closeApp := func() {
		fmt.Println("\n" + Red + "Fatal error occurred. Check " + *logPath + " for details." + Reset)
		os.Exit(1)
	}

	var account *common.Address
	if *accountFlag != "" {
		if !common.IsHexAddress(*accountFlag) {
			rootLogger.Error("Invalid account", "account", *accountFlag)
			closeApp()
		}
		a := common.HexToAddress(*accountFlag)
		account = &a
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- 2. CONNECT ---
	dialCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	router, err := client.Dial(dialCtx, *url)
	cancel()
	if err != nil {
		rootLogger.Error("Failed to connect to router", "url", *url, "error", err)
		closeApp()
	}
	defer router.Close()

	stream, err := client.NewClient(ctx, client.Config{
		URL:        *url,
		Logger:     rootLogger.With("component", "jsonrpc-client"),
		BufferSize: DefaultSwapBufferSize,
	})
	if err != nil {
		rootLogger.Error("Failed to initialize swap stream", "error", err)
		closeApp()
	}

	// --- 3. START CONSOLE & SWAP LOOP ---
	c := &console{
		ctx:     ctx,
		router:  router,
		swaps:   NewSwapLog(DefaultRecentSwaps),
		account: account,
		reader:  bufio.NewReader(os.Stdin),
	}
	c.streaming.Store(true)

	fmt.Println(Green + "Starting Router Console..." + Reset)
	fmt.Println("Logs are being written to '" + *logPath + "'")
	go c.run()

	swapCh, errCh := stream.Swaps(), stream.Err()
	for {
		select {
		case ev := <-swapCh:
			c.swaps.Add(ev)

		case err, ok := <-errCh:
			errCh = nil
			if ok && err != nil {
				// The console stays usable without the live feed.
				rootLogger.Error("Swap stream stopped", "error", err)
				c.streaming.Store(false)
			}

		case <-ctx.Done():
			fmt.Println("\n" + Yellow + "Shutting down..." + Reset)
			return
		}
	}
}

// run handles user input and display.
func (c *console) run() {
	time.Sleep(500 * time.Millisecond)

	for {
		if c.ctx.Err() != nil {
			return
		}

		printMenu()

		fmt.Print(Bold + "Enter selection: " + Reset)
		input, err := c.reader.ReadString('\n')
		if err != nil {
			fmt.Println("Error reading input:", err)
			return
		}

		c.handleCommand(strings.TrimSpace(input))

		fmt.Println("\n" + Gray + "[Press Enter to continue]" + Reset)
		c.reader.ReadString('\n')
	}
}

func printMenu() {
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(Bold + "ROUTER CONSOLE" + Reset + Gray + " | " + consoleVersion + Reset)
	fmt.Println(Gray + "-----------------------------------" + Reset)
	fmt.Printf(" %s1.%s Tokens\n", Cyan, Reset)
	fmt.Printf(" %s2.%s Pool Summary\n", Cyan, Reset)
	fmt.Printf(" %s3.%s Find Pools  %s(by Token)%s\n", Cyan, Reset, Gray, Reset)
	fmt.Printf(" %s4.%s Balances\n", Cyan, Reset)
	fmt.Printf(" %s5.%s Route       %s(Quote Only)%s\n", Cyan, Reset, Gray, Reset)
	fmt.Printf(" %s6.%s Swap        %s(Atomic Multi-Hop)%s\n", Cyan, Reset, Gray, Reset)
	fmt.Printf(" %s7.%s Watch Swaps %s(Live Monitor)%s\n", Cyan, Reset, Gray, Reset)
	fmt.Println(Gray + "-----------------------------------" + Reset)
	fmt.Printf(" %sh.%s Help / Architecture\n", Yellow, Reset)
	fmt.Printf(" %sq.%s Quit\n", Red, Reset)
	fmt.Println("")
}

func (c *console) handleCommand(input string) {
	var err error
	switch input {
	case "1":
		err = c.printTokens()
	case "2":
		err = c.printPoolSummary()
	case "3":
		err = c.findPoolsByToken()
	case "4":
		err = c.printBalances()
	case "5":
		err = c.findRoute()
	case "6":
		err = c.swap()
	case "7":
		c.watchSwaps()
	case "h":
		printHelp()
	case "q":
		exitConsole()
	default:
		fmt.Println(Red + "Unknown command." + Reset)
	}
	if err != nil {
		fmt.Printf(Red+"[ERROR] %v%s\n", err, Reset)
	}
}

// --- COMMAND HANDLERS ---

func printHelp() {
	// Clear screen to make reading the architecture easy
	fmt.Print("\033[H\033[2J")

	header("ROUTER ARCHITECTURE")
	fmt.Println(Bold + "Concept: Best-Path Multi-Hop Swaps" + Reset)
	fmt.Println("The router searches every simple path between two tokens, up to its hop")
	fmt.Println("limit, and executes the best one as a single all-or-nothing transaction.")
	fmt.Println("")

	fmt.Println(Bold + "1. THE POOLS" + Reset)
	fmt.Println("   Each pool is one " + Cyan + "venue" + Reset + " trading one " + Cyan + "pair" + Reset + " of tokens.")
	fmt.Println("   - " + Yellow + "uniswap-v2" + Reset + ": constant product, fee in basis points.")
	fmt.Println("   - " + Yellow + "uniswap-v3" + Reset + ": concentrated liquidity, priced within the active range.")
	fmt.Println("")

	fmt.Println(Bold + "2. THE MODES" + Reset)
	fmt.Printf("   A. %sexact_supply%s\n", Cyan, Reset)
	fmt.Println("      - You fix what you " + Green + "pay" + Reset + ". The router maximizes what you receive.")
	fmt.Println("      - The swap fails unless the output is strictly above your minimum.")
	fmt.Println("")
	fmt.Printf("   B. %sexact_target%s\n", Cyan, Reset)
	fmt.Println("      - You fix what you " + Green + "receive" + Reset + ". The router minimizes what you pay.")
	fmt.Println("      - The swap fails unless the input is strictly below your maximum.")
	fmt.Println("")

	fmt.Println(Bold + "3. EXECUTION" + Reset)
	fmt.Println("   Every hop of a swap runs inside one atomic scope. If any hop fails, or")
	fmt.Println("   the final bound is missed, no balance and no pool changes.")
	fmt.Println("")

	fmt.Println(Gray + "---------------------------------------------------------------" + Reset)
	fmt.Println(Bold + "PURPOSE OF THIS CONSOLE" + Reset)
	fmt.Println("Explore the pool graph, quote routes and run swaps against routerd.")
	fmt.Println(Green + "Tip: " + Reset + "tokens can be entered by symbol or by address.")
	fmt.Println(Gray + "---------------------------------------------------------------" + Reset)
}

func (c *console) printTokens() error {
	book, err := c.tokenBook()
	if err != nil {
		return err
	}
	header("TOKENS")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tNAME\tDECIMALS\tADDRESS\t")
	fmt.Fprintln(w, "------\t----\t--------\t-------\t")
	for _, t := range book.tokens {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t\n", t.Symbol, t.Name, t.Decimals, t.Address.Hex())
	}
	w.Flush()
	return nil
}

func (c *console) printPoolSummary() error {
	book, err := c.tokenBook()
	if err != nil {
		return err
	}
	pools, err := c.pools()
	if err != nil {
		return err
	}
	header("POOL SUMMARY")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
	fmt.Fprintln(w, "ID\tVENUE\tPAIR\tSTATE\t")
	fmt.Fprintln(w, "--\t-----\t----\t-----\t")
	for _, p := range pools {
		pair := book.symbol(p.Pool.Pair.First) + "/" + book.symbol(p.Pool.Pair.Second)
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t\n", p.Pool.ID, p.Pool.Venue, pair, describeState(p.State, book))
	}
	w.Flush()

	fmt.Printf("\n%sListed Pools: %d%s\n", Bold, len(pools), Reset)
	return nil
}

func describeState(ps amm.PoolState, book *tokenBook) string {
	switch {
	case ps.UniswapV2 != nil:
		p := ps.UniswapV2
		return fmt.Sprintf("reserves %s %s / %s %s, fee %d bps",
			formatUnits(p.Reserve0, book.decimals(p.Token0)), book.symbol(p.Token0),
			formatUnits(p.Reserve1, book.decimals(p.Token1)), book.symbol(p.Token1),
			p.FeeBps)
	case ps.UniswapV3 != nil:
		p := ps.UniswapV3
		desc := fmt.Sprintf("liquidity %s, sqrtPriceX96 %s, fee %d", p.Liquidity.Dec(), p.SqrtPriceX96.Dec(), p.Fee)
		reserve0, reserve1, err := v3calc.GetVirtualReserves(p.Token0, p.Token1, *p)
		if err != nil {
			return desc
		}
		return fmt.Sprintf("virtual reserves %s %s / %s %s, %s",
			formatUnits(reserve0, book.decimals(p.Token0)), book.symbol(p.Token0),
			formatUnits(reserve1, book.decimals(p.Token1)), book.symbol(p.Token1),
			desc)
	}
	return Red + "missing" + Reset
}

func (c *console) findPoolsByToken() error {
	book, err := c.tokenBook()
	if err != nil {
		return err
	}
	token, err := book.resolve(c.prompt("\n" + Bold + "[Find Pools] Enter Token Symbol or Address: " + Reset))
	if err != nil {
		return err
	}

	// Print Detailed Token Info
	header("TOKEN DETAILS")
	fmt.Printf(" %s%-10s%s %s\n", Gray, "Symbol:", Reset, token.Symbol)
	fmt.Printf(" %s%-10s%s %s\n", Gray, "Name:", Reset, token.Name)
	fmt.Printf(" %s%-10s%s %d\n", Gray, "Decimals:", Reset, token.Decimals)
	fmt.Printf(" %s%-10s%s %s\n", Gray, "Address:", Reset, token.Address.Hex())

	pools, err := c.pools()
	if err != nil {
		return err
	}
	available := make([]engine.AvailablePool, len(pools))
	for i, p := range pools {
		available[i] = p.Pool.Available()
	}
	graph := tokenpoolregistry.NewTokenPoolRegistry(available)

	hops := graph.HopsFrom(token.Address)
	if len(hops) == 0 {
		fmt.Println(Yellow + "[INFO] Token has no pools." + Reset)
		return nil
	}

	header(strings.ToUpper(fmt.Sprintf("POOLS FOR %s", token.Symbol)))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
	fmt.Fprintln(w, "ID\tVENUE\tPAIRED TOKEN\tPOOL KEY\t")
	fmt.Fprintln(w, "--\t-----\t------------\t--------\t")
	for _, hop := range hops {
		listing := pools[hop.PoolIndex].Pool
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t\n", listing.ID, listing.Venue, book.symbol(hop.Pool.TargetToken()), listing.Key.Hex())
	}
	w.Flush()
	return nil
}

func (c *console) printBalances() error {
	book, err := c.tokenBook()
	if err != nil {
		return err
	}
	account, err := c.readAccount()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.ctx, DefaultRequestTimeout)
	defer cancel()
	balances, err := c.router.Balances(ctx, account)
	if err != nil {
		return err
	}

	header("BALANCES OF " + account.Hex())
	if len(balances) == 0 {
		fmt.Println(Yellow + "[INFO] Account holds nothing." + Reset)
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
	fmt.Fprintln(w, "TOKEN\tAMOUNT\tRAW\t")
	fmt.Fprintln(w, "-----\t------\t---\t")
	for _, t := range book.tokens {
		amount, ok := balances[t.Address]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t\n", t.Symbol, formatUnits(amount, t.Decimals), amount.Dec())
	}
	w.Flush()
	return nil
}

// trade is a fully parsed quote request.
type trade struct {
	mode           aggregator.Mode
	supply, target tokenregistry.Token
	amount         *uint256.Int
}

func (c *console) readTrade(book *tokenBook) (trade, error) {
	var t trade
	var err error

	t.supply, err = book.resolve(c.prompt(Bold + "1. Enter Supply Token: " + Reset))
	if err != nil {
		return t, err
	}
	fmt.Printf("%s   Selected Supply: %s (%d decimals)%s\n", Green, t.supply.Symbol, t.supply.Decimals, Reset)

	t.target, err = book.resolve(c.prompt(Bold + "2. Enter Target Token: " + Reset))
	if err != nil {
		return t, err
	}
	fmt.Printf("%s   Selected Target: %s (%d decimals)%s\n", Green, t.target.Symbol, t.target.Decimals, Reset)

	switch strings.ToLower(c.prompt(Bold + "3. Fix [s]upply or [t]arget amount? (default s): " + Reset)) {
	case "", "s", "supply", "exact_supply":
		t.mode = aggregator.ExactSupply
	case "t", "target", "exact_target":
		t.mode = aggregator.ExactTarget
	default:
		return t, fmt.Errorf("unknown mode")
	}

	fixed := t.supply
	if t.mode == aggregator.ExactTarget {
		fixed = t.target
	}
	t.amount, err = parseUnits(c.prompt(fmt.Sprintf(Bold+"4. Enter %s Amount (e.g. 1.5): "+Reset, fixed.Symbol)), fixed.Decimals)
	return t, err
}

func (c *console) quote(t trade) (aggregator.RouteQuote, error) {
	ctx, cancel := context.WithTimeout(c.ctx, DefaultRequestTimeout)
	defer cancel()
	return c.router.Quote(ctx, t.supply.Address, t.target.Address, t.amount, t.mode)
}

func (c *console) findRoute() error {
	book, err := c.tokenBook()
	if err != nil {
		return err
	}
	header("ROUTE FINDER")
	t, err := c.readTrade(book)
	if err != nil {
		return err
	}

	fmt.Printf("\nRouting %s (%s)... calculating best path...\n", t.mode, t.amount.Dec())
	q, err := c.quote(t)
	if err != nil {
		return err
	}
	printRouteResult(t, q, book)
	return nil
}

func (c *console) swap() error {
	book, err := c.tokenBook()
	if err != nil {
		return err
	}
	header("SWAP")
	account, err := c.readAccount()
	if err != nil {
		return err
	}
	t, err := c.readTrade(book)
	if err != nil {
		return err
	}

	bps := uint64(DefaultSlippageBps)
	if input := c.prompt(fmt.Sprintf(Bold+"5. Slippage in bps (default %d): "+Reset, DefaultSlippageBps)); input != "" {
		bps, err = strconv.ParseUint(input, 10, 64)
		if err != nil || bps > maxSlippageBps {
			return fmt.Errorf("slippage must be between 0 and %d bps", maxSlippageBps)
		}
	}

	q, err := c.quote(t)
	if err != nil {
		return err
	}
	printRouteResult(t, q, book)

	bound := applySlippage(q.Amount, bps, t.mode == aggregator.ExactSupply)
	boundToken := t.target
	boundLabel := "Min. Output"
	if t.mode == aggregator.ExactTarget {
		boundToken = t.supply
		boundLabel = "Max. Input"
	}
	fmt.Printf("%s%s:%s %s %s\n", Bold, boundLabel, Reset, formatUnits(bound, boundToken.Decimals), boundToken.Symbol)
	if answer := strings.ToLower(c.prompt(Bold + "Execute? [y/N]: " + Reset)); answer != "y" && answer != "yes" {
		fmt.Println(Yellow + "Cancelled." + Reset)
		return nil
	}

	ctx, cancel := context.WithTimeout(c.ctx, DefaultRequestTimeout)
	defer cancel()
	var ev aggregator.SwapEvent
	if t.mode == aggregator.ExactSupply {
		ev, err = c.router.SwapWithExactSupply(ctx, account, t.supply.Address, t.target.Address, t.amount, bound)
	} else {
		ev, err = c.router.SwapWithExactTarget(ctx, account, t.supply.Address, t.target.Address, t.amount, bound)
	}
	if err != nil {
		return err
	}

	header("SWAP EXECUTED")
	printSwap(ev, book)
	return nil
}

func (c *console) watchSwaps() {
	if !c.streaming.Load() {
		fmt.Println(Yellow + "[INFO] Swap stream unavailable. Connect with a ws:// URL. (Check logs)" + Reset)
		return
	}
	book, err := c.tokenBook()
	if err != nil {
		fmt.Printf(Red+"[ERROR] %v%s\n", err, Reset)
		return
	}

	fmt.Println(Green + "Starting Live Watch... (Press 'Enter' to stop)" + Reset)
	time.Sleep(1 * time.Second)

	stopCh := make(chan struct{})
	go func() {
		c.reader.ReadString('\n')
		close(stopCh)
	}()

	ticker := time.NewTicker(watchRefreshInterval)
	defer ticker.Stop()

	drawn := false
	var lastTotal uint64
	for {
		select {
		case <-stopCh:
			return
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			recent, total := c.swaps.Recent()
			if drawn && total == lastTotal {
				continue
			}
			drawn, lastTotal = true, total

			fmt.Print("\033[H\033[2J")
			fmt.Printf(Bold+"\n--- LIVE MONITOR (Swaps: %d) ---\n"+Reset, total)
			fmt.Println(Gray + "Press ENTER to return to menu." + Reset)

			if len(recent) == 0 {
				fmt.Println(Yellow + "\nWaiting for the first swap..." + Reset)
				continue
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "\nTRADER\tMODE\tPAID\tRECEIVED\tHOPS\t")
			for _, ev := range recent {
				fmt.Fprintf(w, "%s\t%s\t%s %s\t%s %s\t%d\t\n",
					ev.Trader.Hex()[:10]+"...", ev.Mode,
					formatUnits(ev.SupplyAmount, book.decimals(ev.SupplyToken)), book.symbol(ev.SupplyToken),
					formatUnits(ev.TargetAmount, book.decimals(ev.TargetToken)), book.symbol(ev.TargetToken),
					len(ev.Path))
			}
			w.Flush()
		}
	}
}

func printRouteResult(t trade, q aggregator.RouteQuote, book *tokenBook) {
	header("BEST ROUTE FOUND")

	if t.mode == aggregator.ExactSupply {
		fmt.Printf("%sEst. Output:%s %s %s (Raw: %s)\n\n", Bold, Reset, formatUnits(q.Amount, t.target.Decimals), t.target.Symbol, q.Amount.Dec())
	} else {
		fmt.Printf("%sEst. Input:%s %s %s (Raw: %s)\n\n", Bold, Reset, formatUnits(q.Amount, t.supply.Decimals), t.supply.Symbol, q.Amount.Dec())
	}

	printPath(q.Path, book)

	if repeats := revisitedTokens(q.Path); len(repeats) > 0 {
		symbols := make([]string, len(repeats))
		for i, token := range repeats {
			symbols[i] = book.symbol(token)
		}
		fmt.Printf(Yellow+"[NOTE] Route passes through %s more than once.%s\n", strings.Join(symbols, ", "), Reset)
	}
}

func printPath(path aggregator.Path, book *tokenBook) {
	fmt.Println(Bold + "Route Path:" + Reset)
	for i, hop := range path {
		// VISUAL DISPLAY
		// Step N: [ Symbol In ]
		//            |
		//            +---[ Venue ]---> [ Symbol Out ]
		fmt.Printf(" [ Step %d ]\n", i+1)
		fmt.Printf("  %s%-6s%s\n", Cyan, book.symbol(hop.SupplyToken()), Reset)
		fmt.Printf("    %s|%s\n", Gray, Reset)
		fmt.Printf("    %s+---[%s%s%s]--->%s  %s%-6s%s\n",
			Gray,
			Reset, hop.Venue, Gray,
			Reset,
			Cyan, book.symbol(hop.TargetToken()), Reset)
		fmt.Println("")
	}
}

func printSwap(ev aggregator.SwapEvent, book *tokenBook) {
	printField := func(key string, value any) {
		fmt.Printf("  %s%-15s%s %v\n", Gray, key+":", Reset, value)
	}
	printField("Trader", ev.Trader.Hex())
	printField("Mode", ev.Mode)
	printField("Paid", formatUnits(ev.SupplyAmount, book.decimals(ev.SupplyToken))+" "+book.symbol(ev.SupplyToken))
	printField("Received", formatUnits(ev.TargetAmount, book.decimals(ev.TargetToken))+" "+book.symbol(ev.TargetToken))
	fmt.Println("")
	printPath(ev.Path, book)
}

// --- HELPERS ---

func (c *console) prompt(label string) string {
	fmt.Print(label)
	input, _ := c.reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func (c *console) readAccount() (common.Address, error) {
	label := Bold + "Enter Account Address: " + Reset
	if c.account != nil {
		label = fmt.Sprintf(Bold+"Enter Account Address (default %s): "+Reset, c.account.Hex())
	}
	input := c.prompt(label)
	if input == "" && c.account != nil {
		return *c.account, nil
	}
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address %q", input)
	}
	return common.HexToAddress(input), nil
}

func (c *console) tokenBook() (*tokenBook, error) {
	ctx, cancel := context.WithTimeout(c.ctx, DefaultRequestTimeout)
	defer cancel()
	tokens, err := c.router.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(tokens, func(a, b tokenregistry.Token) int { return strings.Compare(a.Symbol, b.Symbol) })
	return newTokenBook(tokens), nil
}

func (c *console) pools() ([]amm.PoolInfo, error) {
	ctx, cancel := context.WithTimeout(c.ctx, DefaultRequestTimeout)
	defer cancel()
	return c.router.Pools(ctx)
}

func exitConsole() {
	fmt.Println(Yellow + "Exiting..." + Reset)
	os.Exit(0)
}
