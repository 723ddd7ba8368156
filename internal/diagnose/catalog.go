package diagnose

import (
	"regexp"
	"sort"
	"strings"
)

// The two catalogs below are process-wide, read-only tables compiled once at
// startup. Concurrent runs share them without locking.

type techPattern struct {
	name string
	re   *regexp.Regexp
}

// techCatalog identifies technologies in rendered markup. Broad and
// low-precision: a hit here is always confidence=low. Order matters — the
// static matcher scans patterns in this order.
var techCatalog = []techPattern{
	{"angularjs", regexp.MustCompile(`(?i)angular(?:js|\.js|\.min\.js)`)},
	{"angular", regexp.MustCompile(`(?i)@angular/|angular\.js|angularjs`)},
	{"react", regexp.MustCompile(`(?i)react(?:\.js|\.min\.js|/)|react-dom`)},
	{"vue", regexp.MustCompile(`(?i)vue(?:\.js|\.min\.js|\.runtime)`)},
	{"nextjs", regexp.MustCompile(`(?i)_next/|next\.js|__next`)},
	{"nuxt", regexp.MustCompile(`(?i)_nuxt/|nuxt\.js`)},
	{"svelte", regexp.MustCompile(`(?i)svelte|svelte\.js`)},
	{"jquery", regexp.MustCompile(`(?i)jquery(?:\.min)?\.js`)},
	{"backbone", regexp.MustCompile(`(?i)backbone(?:\.min)?\.js`)},
	{"ember", regexp.MustCompile(`(?i)ember(?:\.js|\.min\.js)`)},
	{"knockout", regexp.MustCompile(`(?i)knockout(?:\.min)?\.js`)},
	{"dojo", regexp.MustCompile(`(?i)dojo(?:\.js|\.min\.js)`)},
	{"prototype", regexp.MustCompile(`(?i)prototype(?:\.js|\.min\.js)`)},
	{"mootools", regexp.MustCompile(`(?i)mootools(?:\.js|\.min\.js)`)},
	{"yui", regexp.MustCompile(`(?i)yui(?:\.js|\.min\.js)`)},
	{"extjs", regexp.MustCompile(`(?i)ext(?:\.js|\.min\.js)`)},
	{"underscore", regexp.MustCompile(`(?i)underscore(?:\.min)?\.js`)},
	{"lodash", regexp.MustCompile(`(?i)lodash(?:\.min)?\.js`)},
	{"moment", regexp.MustCompile(`(?i)moment(?:\.min)?\.js`)},
	{"jquery_ui", regexp.MustCompile(`(?i)jquery-ui|jqueryui`)},
	{"bootstrap", regexp.MustCompile(`(?i)bootstrap(?:\.min)?\.(?:js|css)`)},
	{"wordpress", regexp.MustCompile(`(?i)wp-content|wp-includes|wp-admin|wordpress`)},
	{"drupal", regexp.MustCompile(`(?i)drupal\.js|sites/default`)},
	{"joomla", regexp.MustCompile(`(?i)joomla|components/com_`)},
	{"magento", regexp.MustCompile(`(?i)magento|skin/frontend`)},
	{"shopify", regexp.MustCompile(`(?i)cdn\.shopify|shopify`)},
	{"woocommerce", regexp.MustCompile(`(?i)woocommerce`)},
	{"aspnet", regexp.MustCompile(`(?i)asp\.net|aspx|viewstate|__doPostBack`)},
	{"php", regexp.MustCompile(`(?i)\.php\?|x-powered-by.*php`)},
	{"rails", regexp.MustCompile(`(?i)ruby.*on.*rails`)},
	{"django", regexp.MustCompile(`(?i)csrfmiddlewaretoken`)},
	{"laravel", regexp.MustCompile(`(?i)laravel|_token`)},
	{"express", regexp.MustCompile(`(?i)express\.js`)},
	{"socketio", regexp.MustCompile(`(?i)socket\.io`)},
	{"handlebars", regexp.MustCompile(`(?i)handlebars(?:\.min)?\.js`)},
	{"mustache", regexp.MustCompile(`(?i)mustache(?:\.min)?\.js`)},
	{"marionette", regexp.MustCompile(`(?i)marionette(?:\.min)?\.js`)},
	{"requirejs", regexp.MustCompile(`(?i)require(?:\.min)?\.js`)},
	{"fontawesome", regexp.MustCompile(`(?i)font-awesome|fontawesome`)},
	{"modernizr", regexp.MustCompile(`(?i)modernizr(?:\.min)?\.js`)},
}

type vulnSignature struct {
	key string
	re  *regexp.Regexp
}

// vulnCatalog holds version-bounded vulnerable-library signatures. Narrow by
// construction: each pattern encodes the version range with known issues.
var vulnCatalog = []vulnSignature{
	// Next.js < 13
	{"nextjs_old", regexp.MustCompile(`(?i)(?:_next/static/|next\.js[^/]*?@?)(1\.[0-9]\.|^1[0-2]\.)`)},

	// AngularJS 1.x
	{"angularjs_v1_5", regexp.MustCompile(`(?i)angular(?:js)?(?:-|\.min)?\.js\?v?=1\.5`)},
	{"angularjs_v1_4", regexp.MustCompile(`(?i)angular(?:js)?(?:-|\.min)?\.js\?v?=1\.4`)},
	{"angularjs_v1_3", regexp.MustCompile(`(?i)angular(?:js)?(?:-|\.min)?\.js\?v?=1\.3`)},
	{"angularjs_v1_2", regexp.MustCompile(`(?i)angular(?:js)?(?:-|\.min)?\.js\?v?=1\.2`)},
	{"angularjs_v1_1", regexp.MustCompile(`(?i)angular(?:js)?(?:-|\.min)?\.js\?v?=1\.1`)},
	{"angularjs_v1_0", regexp.MustCompile(`(?i)angular(?:js)?(?:-|\.min)?\.js\?v?=1\.0`)},
	{"angularjs_old", regexp.MustCompile(`(?i)angular(?:js)?(?:-|\.min)?\.js\?v?=1\.[0-6]`)},

	// jQuery < 1.12 — strict file pattern, not just the word "jquery"
	{"jquery_old", regexp.MustCompile(`(?i)jquery[.-](?:1\.([0-9]|1[0-1]))(?:\.|\b)`)},

	// Bootstrap < 3.5
	{"bootstrap_old", regexp.MustCompile(`(?i)bootstrap(?:-|\.min)?\.(?:js|css)[^/]*?3\.[0-4]`)},

	// React < 16.8
	{"react_old", regexp.MustCompile(`(?i)react(?:-dom)?(?:-|\.min)?\.js[^/]*?(?:0\.|1[0-5]\.|16\.[0-7]\b)`)},

	// Vue.js < 2.6
	{"vue_old", regexp.MustCompile(`(?i)vue(?:-|\.min)?\.js[^/]*?(?:0\.|1\.|2\.[0-5])`)},

	// Backbone.js < 1.4
	{"backbone_old", regexp.MustCompile(`(?i)backbone(?:-|\.min)?\.js[^/]*?(?:0\.|1\.[0-3])`)},

	// Ember.js < 2.18 — word boundary avoids matching e.g. "emberSupport"
	{"ember_old", regexp.MustCompile(`(?i)\bember(?:-|\.min)?\.js[^/]*?(?:0\.|1\.|2\.[0-1][0-7])`)},

	// Knockout.js < 3.5
	{"knockout_old", regexp.MustCompile(`(?i)knockout(?:-|\.min)?\.js[^/]*?(?:0\.|1\.|2\.|3\.[0-4])`)},

	// Dojo Toolkit < 1.14
	{"dojo_old", regexp.MustCompile(`(?i)dojo(?:-|\.min)?\.js[^/]*?(?:0\.|1\.[0-1][0-3])`)},

	// Prototype.js < 1.7.3
	{"prototype_old", regexp.MustCompile(`(?i)prototype(?:-|\.min)?\.js[^/]*?(?:0\.|1\.[0-6]\.|1\.7\.[0-2])`)},

	// MooTools < 1.6
	{"mootools_old", regexp.MustCompile(`(?i)mootools(?:-|\.min)?\.js[^/]*?(?:0\.|1\.[0-5])`)},

	// YUI < 3.18
	{"yui_old", regexp.MustCompile(`(?i)yui(?:-|\.min)?\.js[^/]*?(?:0\.|1\.|2\.|3\.[0-1][0-7])`)},

	// ExtJS < 6.2
	{"extjs_old", regexp.MustCompile(`(?i)ext(?:-|\.min)?\.js[^/]*?(?:0\.|1\.|2\.|3\.|4\.|5\.|6\.[0-1])`)},

	// Underscore.js < 1.9
	{"underscore_old", regexp.MustCompile(`(?i)underscore(?:-|\.min)?\.js[^/]*?(?:0\.|1\.[0-8])`)},

	// Lodash < 4.17
	{"lodash_old", regexp.MustCompile(`(?i)lodash(?:-|\.min)?\.js[^/]*?(?:0\.|1\.|2\.|3\.|4\.[0-1][0-6])`)},

	// jQuery UI < 1.12
	{"jquery_ui_old", regexp.MustCompile(`(?i)jquery-ui(?:-|\.min)?\.js[^/]*?(?:0\.|1\.[0-1][0-1])`)},

	// WordPress — generator tag or wp-includes path carrying an old version
	{"wordpress_old", regexp.MustCompile(`(?i)wp-includes/.*?ver=(?:[0-4]\.|5\.[0-9]\.|6\.[0-1]\.)`)},

	// Drupal < 8
	{"drupal_old", regexp.MustCompile(`(?i)drupal\.js.*?v?(?:[0-7]\.)`)},

	// Joomla < 3.9
	{"joomla_old", regexp.MustCompile(`(?i)joomla.*?v?(?:[0-2]\.|3\.[0-8])`)},

	// Handlebars < 4.0
	{"handlebars_old", regexp.MustCompile(`(?i)handlebars(?:-|\.min)?\.js[^/]*?(?:0\.|1\.|2\.|3\.)`)},

	// Mustache.js < 3.0
	{"mustache_old", regexp.MustCompile(`(?i)mustache(?:-|\.min)?\.js[^/]*?(?:0\.|1\.|2\.)`)},

	// Marionette.js < 4.0
	{"marionette_old", regexp.MustCompile(`(?i)marionette(?:-|\.min)?\.js[^/]*?(?:0\.|1\.|2\.|3\.)`)},

	// RequireJS < 2.3
	{"requirejs_old", regexp.MustCompile(`(?i)require(?:-|\.min)?\.js[^/]*?(?:0\.|1\.|2\.[0-2])`)},

	// Socket.io < 2.0
	{"socketio_old", regexp.MustCompile(`(?i)socket\.io(?:-|\.min)?\.js[^/]*?(?:0\.|1\.)`)},

	// Modernizr < 3.0
	{"modernizr_old", regexp.MustCompile(`(?i)modernizr(?:-|\.min)?\.js[^/]*?(?:0\.|1\.|2\.)`)},
}

// vulnScanOrder is vulnCatalog reordered for scanning: signatures whose key
// contains "old" are broad fallbacks and run after the narrow version-pinned
// ones, each group in lexical key order. This lets a specific signature claim
// a dedup key before a generic one reaches it.
var vulnScanOrder = func() []vulnSignature {
	ordered := make([]vulnSignature, len(vulnCatalog))
	copy(ordered, vulnCatalog)
	sort.SliceStable(ordered, func(i, j int) bool {
		oi := strings.Contains(ordered[i].key, "old")
		oj := strings.Contains(ordered[j].key, "old")
		if oi != oj {
			return !oi
		}
		return ordered[i].key < ordered[j].key
	})
	return ordered
}()

// displayNameOrder fixes the lookup order for substring matching a
// vulnerability signature id against the display-name table.
var displayNameOrder = []string{
	"angularjs", "angular", "jquery", "bootstrap", "react", "vue", "nextjs",
	"nuxt", "svelte", "backbone", "ember", "knockout", "dojo", "prototype",
	"mootools", "yui", "extjs", "underscore", "lodash", "moment", "jquery_ui",
	"wordpress", "drupal", "joomla", "magento", "shopify", "woocommerce",
	"aspnet", "php", "rails", "django", "laravel", "handlebars", "mustache",
	"marionette", "requirejs", "socketio", "express", "fontawesome",
	"modernizr",
}

// displayNames maps canonical technology ids to human-readable labels.
var displayNames = map[string]string{
	"angularjs":   "AngularJS",
	"angular":     "Angular",
	"jquery":      "jQuery",
	"bootstrap":   "Bootstrap",
	"react":       "React",
	"vue":         "Vue.js",
	"nextjs":      "Next.js",
	"nuxt":        "Nuxt.js",
	"svelte":      "Svelte",
	"backbone":    "Backbone.js",
	"ember":       "Ember.js",
	"knockout":    "Knockout.js",
	"dojo":        "Dojo Toolkit",
	"prototype":   "Prototype.js",
	"mootools":    "MooTools",
	"yui":         "YUI",
	"extjs":       "ExtJS",
	"underscore":  "Underscore.js",
	"lodash":      "Lodash",
	"moment":      "Moment.js",
	"jquery_ui":   "jQuery UI",
	"wordpress":   "WordPress",
	"drupal":      "Drupal",
	"joomla":      "Joomla",
	"magento":     "Magento",
	"shopify":     "Shopify",
	"woocommerce": "WooCommerce",
	"aspnet":      "ASP.NET",
	"php":         "PHP",
	"rails":       "Ruby on Rails",
	"django":      "Django",
	"laravel":     "Laravel",
	"handlebars":  "Handlebars",
	"mustache":    "Mustache.js",
	"marionette":  "Marionette.js",
	"requirejs":   "RequireJS",
	"socketio":    "Socket.io",
	"express":     "Express.js",
	"fontawesome": "Font Awesome",
	"modernizr":   "Modernizr",
}

// labelPriority ranks technology ids for the human-readable label: frameworks
// and platforms above utility libraries. Earlier means more prominent.
var labelPriority = []string{
	"nextjs", "nuxt", "react", "vue", "angular", "angularjs", "svelte",
	"wordpress", "drupal", "joomla", "magento", "shopify", "rails",
	"django", "laravel", "aspnet", "php", "express", "ember", "backbone",
	"bootstrap", "jquery",
}
