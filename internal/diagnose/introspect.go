package diagnose

import "go.uber.org/zap"

// pageEvaluator is the slice of the browser session the introspector needs.
type pageEvaluator interface {
	Evaluate(expr string, res interface{}) error
}

type liveFinding struct {
	Name       string  `json:"name"`
	Version    *string `json:"version"`
	Confidence string  `json:"confidence"`
}

type detector struct {
	name string
	expr string
}

// Introspect runs the live detectors against the rendered page, in order.
// Each detector is independent: a failure is logged and the rest still run.
// The returned findings carry no duplicate (name, version) pairs and keep
// discovery order.
func Introspect(page pageEvaluator, logger *zap.SugaredLogger) []TechFinding {
	seen := make(map[string]struct{})
	var findings []TechFinding

	for _, d := range liveDetectors {
		var raw []liveFinding
		if err := page.Evaluate(d.expr, &raw); err != nil {
			if logger != nil {
				logger.Warnw("live detector failed", "detector", d.name, "error", err)
			}
			continue
		}
		for _, f := range raw {
			version := ""
			if f.Version != nil {
				version = *f.Version
			}
			key := f.Name + ":" + version
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			findings = append(findings, TechFinding{
				Name:       f.Name,
				Version:    version,
				Confidence: Confidence(f.Confidence),
			})
		}
	}
	return findings
}

// liveDetectors inspect runtime globals and DOM markers inside the page
// context. Each snippet evaluates to an array of {name, version, confidence}
// and must swallow its own internal errors where partial data is still
// useful.
var liveDetectors = []detector{
	{"jquery-global", `(() => {
		const t = [];
		if (window.jQuery && window.jQuery.fn && window.jQuery.fn.jquery) {
			t.push({name: 'jquery', version: String(window.jQuery.fn.jquery), confidence: 'high'});
		}
		return t;
	})()`},

	{"angularjs-global", `(() => {
		const t = [];
		if (window.angular && window.angular.version) {
			t.push({name: 'angularjs', version: window.angular.version.full || null, confidence: 'high'});
		}
		return t;
	})()`},

	{"react", `(() => {
		const t = [];
		const isReactElement = (el) => {
			if (!el) return false;
			return Object.keys(el).some(key =>
				key.startsWith('__reactFiber') ||
				key.startsWith('__reactInternalInstance') ||
				key.startsWith('__reactContainer') ||
				key.startsWith('_reactRootContainer'));
		};
		let found = isReactElement(document.body);
		if (!found) {
			for (const child of document.body.children) {
				if (isReactElement(child)) { found = true; break; }
			}
		}
		if (!found) {
			for (const id of ['root', 'app', '__next', 'main']) {
				if (isReactElement(document.getElementById(id))) { found = true; break; }
			}
		}
		let version = null;
		const hook = window.__REACT_DEVTOOLS_GLOBAL_HOOK__;
		if (hook && hook.renderers) {
			try {
				const renderers = hook.renderers;
				if (renderers instanceof Map) {
					for (const r of renderers.values()) {
						if (r.version) { version = r.version; break; }
					}
				} else if (typeof renderers === 'object') {
					for (const key in renderers) {
						if (renderers[key] && renderers[key].version) { version = renderers[key].version; break; }
					}
				}
			} catch (e) {}
		}
		if (version) {
			t.push({name: 'react', version: version, confidence: 'high'});
		} else if (found) {
			t.push({name: 'react', version: null, confidence: 'high'});
		} else if (window.React && window.React.version) {
			t.push({name: 'react', version: window.React.version, confidence: 'high'});
		} else if (document.querySelector('[data-reactroot], [data-reactid]')) {
			t.push({name: 'react', version: null, confidence: 'high'});
		} else if (window.__NEXT_DATA__ || window.next) {
			t.push({name: 'react', version: null, confidence: 'high'});
		}
		return t;
	})()`},

	{"nextjs", `(() => {
		const t = [];
		if (window.__NEXT_DATA__) {
			t.push({name: 'nextjs', version: null, confidence: 'high'});
		} else if (window.next && window.next.version) {
			t.push({name: 'nextjs', version: window.next.version, confidence: 'high'});
		}
		return t;
	})()`},

	{"nuxt", `(() => {
		const t = [];
		if (window.__NUXT__) {
			t.push({name: 'nuxt', version: null, confidence: 'high'});
		}
		return t;
	})()`},

	// Bootstrap sits at medium so frameworks win the label ordering.
	{"bootstrap-global", `(() => {
		const t = [];
		if (window.bootstrap && window.bootstrap.Tooltip && window.bootstrap.Tooltip.VERSION) {
			t.push({name: 'bootstrap', version: window.bootstrap.Tooltip.VERSION, confidence: 'medium'});
		}
		return t;
	})()`},

	{"lodash-underscore", `(() => {
		const t = [];
		if (window._ && window._.VERSION) {
			if (window._.templateSettings) {
				t.push({name: 'underscore', version: window._.VERSION, confidence: 'medium'});
			} else {
				t.push({name: 'lodash', version: window._.VERSION, confidence: 'medium'});
			}
		}
		return t;
	})()`},

	{"moment-global", `(() => {
		const t = [];
		if (window.moment && window.moment.version) {
			t.push({name: 'moment', version: window.moment.version, confidence: 'medium'});
		}
		return t;
	})()`},

	{"socketio-global", `(() => {
		const t = [];
		if (window.io && window.io.version) {
			t.push({name: 'socketio', version: window.io.version, confidence: 'medium'});
		}
		return t;
	})()`},

	{"meta-generator", `(() => {
		const t = [];
		document.querySelectorAll('meta[name="generator"]').forEach(meta => {
			const content = (meta.content || '').toLowerCase();
			if (content.includes('wordpress')) {
				const m = content.match(/wordpress\s+(\d+\.\d+(?:\.\d+)?)/);
				t.push({name: 'wordpress', version: m ? m[1] : null, confidence: 'high'});
			}
			if (content.includes('drupal')) t.push({name: 'drupal', version: null, confidence: 'high'});
			if (content.includes('joomla')) t.push({name: 'joomla', version: null, confidence: 'high'});
			if (content.includes('shopify')) t.push({name: 'shopify', version: null, confidence: 'high'});
			if (content.includes('magento')) t.push({name: 'magento', version: null, confidence: 'high'});
			if (content.includes('wix')) t.push({name: 'wix', version: null, confidence: 'high'});
			if (content.includes('squarespace')) t.push({name: 'squarespace', version: null, confidence: 'high'});
		});
		return t;
	})()`},

	// Versioned filenames in script src, e.g. /jquery-3.6.0.min.js.
	{"script-src", `(() => {
		const t = [];
		const known = ['jquery', 'bootstrap', 'vue', 'react', 'angular', 'angularjs',
			'moment', 'lodash', 'underscore', 'backbone', 'knockout'];
		document.querySelectorAll('script[src]').forEach(script => {
			const m = script.src.match(/([a-zA-Z0-9-]+)[.-](\d+\.\d+(?:\.\d+)?)/);
			if (!m) return;
			let name = m[1].toLowerCase();
			if (name.includes('jquery') && !name.includes('ui')) name = 'jquery';
			else if (name.includes('bootstrap')) name = 'bootstrap';
			else if (name.includes('vue')) name = 'vue';
			else if (name.includes('react')) name = 'react';
			else if (name.includes('angular')) name = 'angular';
			if (known.includes(name)) {
				t.push({name: name, version: m[2], confidence: 'medium'});
			}
		});
		return t;
	})()`},
}
