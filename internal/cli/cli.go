package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/pkg/browser"
	"github.com/pkg/errors"
)

// Args содержит аргументы командной строки.
type Args struct {
	ShortURL     string
	Target       string
	HasTarget    bool
	Derive       bool
	ForceReplace bool
	Silent       bool
	NoBrowser    bool
	APIURL       string
}

// ErrUsage возвращается при неверном наборе аргументов.
var ErrUsage = errors.New("usage: goto [-f] [-s] [-n] [-api URL] <shorturl> [target] | goto -derive [-s] [-api URL] <target>")

// ParseArgs разбирает аргументы командной строки без имени программы.
func ParseArgs(args []string, output io.Writer) (Args, error) {
	var a Args

	flagSet := flag.NewFlagSet("goto", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.BoolVar(&a.ForceReplace, "f", false, "create the short URL, or if it already exists, update it instead")
	flagSet.BoolVar(&a.Silent, "s", false, "don't print redirections")
	flagSet.BoolVar(&a.NoBrowser, "n", false, "don't open the browser")
	flagSet.StringVar(&a.APIURL, "api", "", "base URL of the goto API")
	flagSet.BoolVar(&a.Derive, "derive", false, "shorten the target under a short URL derived from its hash")

	if err := flagSet.Parse(args); err != nil {
		return Args{}, errors.Wrap(err, "parse args")
	}

	rest := flagSet.Args()
	switch {
	case a.Derive && len(rest) == 1:
		a.Target, a.HasTarget = rest[0], true
	case a.Derive:
		return Args{}, ErrUsage
	case len(rest) == 1:
		a.ShortURL = rest[0]
	case len(rest) == 2:
		a.ShortURL, a.Target, a.HasTarget = rest[0], rest[1], true
	default:
		return Args{}, ErrUsage
	}

	return a, nil
}

// Options содержит итоговые параметры запуска: флаги командной строки дополняются файлом настроек.
type Options struct {
	ShortURL      string
	Target        string
	HasTarget     bool
	Derive        bool
	AlwaysReplace bool
	Verbose       bool
	OpenBrowser   bool
}

// NewOptions объединяет аргументы и настройки. Включенный флаг имеет приоритет над файлом.
func NewOptions(args Args, conf Config) Options {
	return Options{
		ShortURL:      args.ShortURL,
		Target:        args.Target,
		HasTarget:     args.HasTarget,
		Derive:        args.Derive,
		AlwaysReplace: args.ForceReplace || isSet(conf.ForceReplace),
		Verbose:       !(args.Silent || isSet(conf.Silent)),
		OpenBrowser:   !(args.NoBrowser || isSet(conf.NoBrowser)),
	}
}

// APIURL возвращает адрес сервиса: из аргументов, затем из настроек, иначе адрес по умолчанию.
func APIURL(args Args, conf Config) string {
	if args.APIURL != "" {
		return args.APIURL
	}
	if conf.APIURL != nil {
		return *conf.APIURL
	}
	return DefaultAPIURL
}

func isSet(v *bool) bool {
	return v != nil && *v
}

// Client определяет операции сервиса коротких ссылок, которые использует командная строка.
type Client interface {
	Create(ctx context.Context, shortURL, target string) (string, error)
	Update(ctx context.Context, shortURL, target string) (string, error)
	Shorten(ctx context.Context, target string) (string, error)
	Lookup(ctx context.Context, shortURL string) (string, error)
}

// Opener открывает адрес в браузере.
type Opener func(url string) error

// Cli выполняет команду клиента.
type Cli struct {
	options Options
	client  Client
	out     io.Writer
	open    Opener
}

// New создает команду. Если opener не задан, адрес открывается в системном браузере.
func New(options Options, client Client, out io.Writer, opener Opener) *Cli {
	if opener == nil {
		opener = browser.OpenURL
	}

	return &Cli{
		options: options,
		client:  client,
		out:     out,
		open:    opener,
	}
}

// Run регистрирует или обновляет короткую ссылку, если задан адрес назначения
// (с флагом -derive ключ вычисляет сервер), иначе выводит адрес перенаправления и открывает его в браузере.
func (c *Cli) Run(ctx context.Context) error {
	if c.options.HasTarget {
		return c.register(ctx)
	}

	location, err := c.client.Lookup(ctx, c.options.ShortURL)
	if err != nil {
		return err
	}

	if c.options.Verbose {
		_, _ = fmt.Fprintf(c.out, "redirecting to %s\n", location)
	}

	if c.options.OpenBrowser {
		if err := c.open(location); err != nil {
			return errors.Wrap(err, "open browser")
		}
	}

	return nil
}

func (c *Cli) register(ctx context.Context) error {
	var (
		msg string
		err error
	)
	switch {
	case c.options.Derive:
		msg, err = c.client.Shorten(ctx, c.options.Target)
	case c.options.AlwaysReplace:
		msg, err = c.client.Update(ctx, c.options.ShortURL, c.options.Target)
	default:
		msg, err = c.client.Create(ctx, c.options.ShortURL, c.options.Target)
	}
	if err != nil {
		return err
	}

	if c.options.Verbose && msg != "" {
		_, _ = fmt.Fprintln(c.out, msg)
	}

	return nil
}
