package codegen

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/professor-lee/FalseClose/internal/model"
)

func str(s string) model.String { return model.String(s) }

func event(action model.ActionKind, params ...model.Pair) model.EventBinding {
	return model.EventBinding{Action: action, Params: model.NewMap(params...)}
}

// landingPage exercises every attribute and handler rule at once.
func landingPage() *model.Page {
	return &model.Page{
		ID:    "p1",
		Name:  "Landing",
		Route: "/",
		Nodes: []*model.Node{
			{
				ID:       "box",
				Type:     "Container",
				Props:    model.NewMap(model.P("className", str("hero"))),
				Styles:   model.NewMap(model.P("padding", str("24px")), model.P("backgroundColor", str("#fff"))),
				Children: []string{"h", "btn", "in"},
			},
			{ID: "h", Type: "Heading", ParentID: "box", Props: model.NewMap(model.P("text", str("Welcome <home>")))},
			{
				ID:       "btn",
				Type:     "Button",
				ParentID: "box",
				Props: model.NewMap(
					model.P("label", str("About")),
					model.P("type", str("primary")),
					model.P("disabled", model.Bool(false)),
					model.P("round", model.Bool(true)),
				),
				Events: model.NewEvents("click", event(model.ActionNavigate, model.P("path", str("/about")))),
			},
			{
				ID:       "in",
				Type:     "Input",
				ParentID: "box",
				Props: model.NewMap(
					model.P("placeholder", str("Your name")),
					model.P("name", str("username")),
					model.P("clearable", model.Bool(true)),
				),
			},
			{
				ID:     "t",
				Type:   "Text",
				Props:  model.NewMap(model.P("text", str("Tom & Jerry's"))),
				Events: model.NewEvents("mouseenter", event(model.ActionCustomCode, model.P("code", str("const x = 1\nconsole.log(x)")))),
			},
			{
				ID:   "tbl",
				Type: "Table",
				Props: model.NewMap(
					model.P("stripe", model.Bool(true)),
					model.P("columns", model.List{model.NewMap(model.P("label", str("A")), model.P("prop", str("a")))}),
				),
				Events: model.NewEvents("row-click", event(model.ActionToggleVisibility, model.P("targetId", str("box")))),
			},
			{
				ID:   "sel",
				Type: "Select",
				Props: model.NewMap(
					model.P("placeholder", str("Pick one")),
					model.P("modelValue", str("")),
				),
			},
			{
				ID:     "btn2",
				Type:   "Button",
				Props:  model.NewMap(model.P("label", str("Again"))),
				Events: model.NewEvents("click", event(model.ActionCustomCode, model.P("code", str("alert(1)")))),
			},
		},
		RootOrder: []string{"box", "t", "tbl", "sel", "btn2"},
	}
}

func landingConfig() Config {
	return Config{
		GlobalStyles: model.NewMap(
			model.P("fontSize", str("14px")),
			model.P("backgroundColor", str("#fafafa")),
		),
	}
}

func TestGenerateLandingDocument(t *testing.T) {
	out := Generate(landingPage(), landingConfig())

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "landing", []byte(Document(out)))
}

func TestGenerateEmptyPage(t *testing.T) {
	out := Generate(&model.Page{ID: "p", Route: "/"}, Config{})

	assert.Equal(t, "  <div class=\"page-container\">\n    <!-- page content -->\n  </div>", out.Markup)
	assert.Equal(t, "import { ref, reactive } from 'vue'\n", out.Script)
	assert.Equal(t, "", out.Style)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "empty", []byte(Document(out)))
}

func TestGenerateIsDeterministic(t *testing.T) {
	first := Generate(landingPage(), landingConfig())
	for range 10 {
		assert.Equal(t, first, Generate(landingPage(), landingConfig()))
	}
}

// Scenario: a root Button labelled "Click".
func TestButtonLabelRendersInline(t *testing.T) {
	page := &model.Page{
		ID:        "p",
		Nodes:     []*model.Node{{ID: "b", Type: "Button", Props: model.NewMap(model.P("label", str("Click")))}},
		RootOrder: []string{"b"},
	}
	out := Generate(page, Config{})
	assert.Contains(t, out.Markup, "<el-button>Click</el-button>")
	assert.NotContains(t, out.Markup, "/>")
}

// Scenario: navigate binding produces router acquisition and a push.
func TestNavigateHandler(t *testing.T) {
	page := &model.Page{
		ID: "p",
		Nodes: []*model.Node{{
			ID:     "b",
			Type:   "Button",
			Events: model.NewEvents("click", event(model.ActionNavigate, model.P("path", str("/about")))),
		}},
		RootOrder: []string{"b"},
	}
	out := Generate(page, Config{})
	assert.Contains(t, out.Script, "import { useRouter } from 'vue-router'")
	assert.Contains(t, out.Script, "const router = useRouter()")
	assert.Contains(t, out.Script, "const handleClick = () => {\n  router.push('/about')\n}")
	assert.Contains(t, out.Markup, `@click="handleClick"`)
}

func TestNavigateWithoutPathFallsBack(t *testing.T) {
	page := &model.Page{
		ID:        "p",
		Nodes:     []*model.Node{{ID: "b", Type: "Button", Events: model.NewEvents("click", event(model.ActionNavigate))}},
		RootOrder: []string{"b"},
	}
	out := Generate(page, Config{})
	assert.Contains(t, out.Script, "const router = useRouter()")
	assert.Contains(t, out.Script, "console.log('click triggered')")
}

func TestUnknownTypeAndAction(t *testing.T) {
	page := &model.Page{
		ID: "p",
		Nodes: []*model.Node{{
			ID:     "m",
			Type:   "Marquee",
			Events: model.NewEvents("dblclick", event(model.ActionKind("shout"))),
		}},
		RootOrder: []string{"m"},
	}
	out := Generate(page, Config{})
	assert.Contains(t, out.Markup, "    <div @dblclick=\"handleDblclick\">\n    </div>")
	assert.Contains(t, out.Script, "console.log('dblclick triggered')")
}

func TestEmptyActionBindsNothing(t *testing.T) {
	page := &model.Page{
		ID:        "p",
		Nodes:     []*model.Node{{ID: "b", Type: "Button", Events: model.NewEvents("click", model.EventBinding{})}},
		RootOrder: []string{"b"},
	}
	out := Generate(page, Config{})
	assert.NotContains(t, out.Markup, "@click")
	assert.NotContains(t, out.Script, "handleClick")
}

func TestSelfClosingAllowList(t *testing.T) {
	page := &model.Page{
		ID: "p",
		Nodes: []*model.Node{
			{ID: "d", Type: "Divider"},
			{ID: "t", Type: "Divider", Props: model.NewMap(model.P("text", str("or")))},
		},
		RootOrder: []string{"d", "t"},
	}

	out := Generate(page, Config{})
	assert.Contains(t, out.Markup, "<el-divider>\n    </el-divider>")

	out = Generate(page, Config{SelfClosing: []string{"Divider"}})
	assert.Contains(t, out.Markup, "    <el-divider />\n")
	assert.Contains(t, out.Markup, "<el-divider>or</el-divider>", "text always renders inline")
}

func TestStyleKeptWhenAllValuesEmpty(t *testing.T) {
	out := Generate(&model.Page{ID: "p"}, Config{
		GlobalStyles: model.NewMap(model.P("color", str(""))),
	})
	assert.Equal(t, "/* global styles */\n.page-container {\n}\n", out.Style)

	out = Generate(&model.Page{ID: "p"}, Config{GlobalStyles: model.NewMap()})
	assert.Equal(t, "", out.Style, "no keys, no rule")

	page := &model.Page{
		ID:        "p",
		Nodes:     []*model.Node{{ID: "x", Type: "Text", Styles: model.NewMap(model.P("color", str("")))}},
		RootOrder: []string{"x"},
	}
	assert.NotContains(t, Generate(page, Config{}).Markup, "style=")
}

func TestNumberAndQuotedAttributes(t *testing.T) {
	page := &model.Page{
		ID: "p",
		Nodes: []*model.Node{{
			ID:   "i",
			Type: "Image",
			Props: model.NewMap(
				model.P("width", model.Number(0.5)),
				model.P("alt", str(`say "hi"`)),
				model.P("className", str("a b")),
			),
		}},
		RootOrder: []string{"i"},
	}
	out := Generate(page, Config{})
	assert.Contains(t, out.Markup, `<el-image class="a b" :width="0.5" alt="say &quot;hi&quot;">`)
}

func TestHTMLLibraryTags(t *testing.T) {
	page := &model.Page{
		ID:        "p",
		Nodes:     []*model.Node{{ID: "b", Type: "Button", Props: model.NewMap(model.P("label", str("Go")))}},
		RootOrder: []string{"b"},
	}
	out := Generate(page, Config{UILibrary: "html"})
	assert.Contains(t, out.Markup, "<button>Go</button>")
}

func TestFormFieldsFallBackToID(t *testing.T) {
	page := &model.Page{
		ID: "p",
		Nodes: []*model.Node{
			{ID: "sw", Type: "Switch"},
			{ID: "in1", Type: "Input", Props: model.NewMap(model.P("name", str("email")))},
			{ID: "in2", Type: "Input", Props: model.NewMap(model.P("name", str("email")))},
		},
		RootOrder: []string{"sw", "in1", "in2"},
	}
	out := Generate(page, Config{})
	assert.Contains(t, out.Script, "const formData = reactive({\n  sw: '',\n  email: '',\n})")
}

func TestMalformedTreeStillGenerates(t *testing.T) {
	page := &model.Page{
		ID: "p",
		Nodes: []*model.Node{
			{ID: "a", Type: "Container", Children: []string{"ghost", "b"}},
			{ID: "b", Type: "Text", ParentID: "a", Props: model.NewMap(model.P("text", str("ok")))},
		},
	}
	out := Generate(page, Config{})
	assert.Contains(t, out.Markup, "<span>ok</span>")
	assert.NotEmpty(t, Generate(nil, Config{}).Script, "nil page still renders")
}

func TestHandlerNames(t *testing.T) {
	assert.Equal(t, "handleClick", handlerName("click"))
	assert.Equal(t, "handleRowClick", handlerName("row-click"))
	assert.Equal(t, "handleUpdateModelValue", handlerName("update:modelValue"))
	assert.Equal(t, "handleVisibleChange", handlerName("visible-change"))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "background-color", kebab("backgroundColor"))
	assert.Equal(t, "z-index", kebab("zIndex"))
	assert.Equal(t, `'it\'s'`, jsString("it's"))
	assert.Equal(t, "username", jsKey("username"))
	assert.Equal(t, "'Pick one'", jsKey("Pick one"))
	assert.Equal(t, "'1st'", jsKey("1st"))
	assert.Equal(t, "&lt;b&gt; &amp; &#039;", escapeHTML("<b> & '"))
}

func TestFileName(t *testing.T) {
	cases := map[string]string{
		"/":             "index.vue",
		"":              "index.vue",
		"/about":        "about.vue",
		"/user/profile": "user-profile.vue",
		"/a b?":         "a-b.vue",
	}
	for route, want := range cases {
		assert.Equal(t, want, FileName(&model.Page{ID: "p", Route: route}), route)
	}
	require.True(t, strings.HasSuffix(FileName(&model.Page{ID: "p9", Route: "/???"}), "p9.vue"))
}
