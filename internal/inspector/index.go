// Package inspector строит структурный снимок интерактивных элементов страницы
// и вычисляет разницу между снимками. Снимки неизменяемы; идентичность элементов
// между снимками определяется структурным ключом, а не ссылкой на DOM-узел.
package inspector

import (
	"context"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// ElementDescriptor описывает один интерактивный элемент, наблюдаемый на странице.
type ElementDescriptor struct {
	Kind        string // button, link, input, textarea, select, role-элемент
	Text        string // Видимый текст (обрезанный)
	Placeholder string
	Label       string // aria-label / title
	Role        string
	Path        string // Цепочка предков с индексами, устойчивая к перерисовкам
	Bounds      Bounds
	Key         string // Структурный ключ: kind + нормализованная метка + path
}

type Bounds struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Empty сообщает, что у элемента нет наблюдаемой геометрии.
func (b Bounds) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Center возвращает центр элемента в координатах viewport.
func (b Bounds) Center() (float64, float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// BestLabel возвращает наиболее информативную метку элемента для сопоставления и промптов.
func (e ElementDescriptor) BestLabel() string {
	if e.Text != "" {
		return e.Text
	}
	if e.Label != "" {
		return e.Label
	}
	if e.Placeholder != "" {
		return e.Placeholder
	}
	return e.Role
}

// Fillable сообщает, можно ли вводить текст в элемент.
func (e ElementDescriptor) Fillable() bool {
	switch e.Kind {
	case "input", "textarea", "contenteditable":
		return true
	}
	return e.Role == "textbox" || e.Role == "searchbox" || e.Role == "combobox"
}

// Snapshot - упорядоченный набор дескрипторов, снятый в один момент времени.
// После создания не изменяется; порядок элементов соответствует порядку в документе.
type Snapshot struct {
	URL      string
	Title    string
	Elements []ElementDescriptor

	keys map[string]int // ключ -> индекс первого элемента с этим ключом
}

// NewSnapshot строит снимок из готовых дескрипторов, вычисляя структурные ключи.
func NewSnapshot(url, title string, elements []ElementDescriptor) *Snapshot {
	s := &Snapshot{
		URL:      url,
		Title:    title,
		Elements: make([]ElementDescriptor, len(elements)),
		keys:     make(map[string]int, len(elements)),
	}
	for i, el := range elements {
		if el.Key == "" {
			el.Key = BuildKey(el)
		}
		s.Elements[i] = el
		if _, ok := s.keys[el.Key]; !ok {
			s.keys[el.Key] = i
		}
	}
	return s
}

// EmptySnapshot - снимок без элементов, используется как prior для первого diff.
func EmptySnapshot() *Snapshot {
	return NewSnapshot("", "", nil)
}

func (s *Snapshot) HasKey(key string) bool {
	_, ok := s.keys[key]
	return ok
}

func (s *Snapshot) Len() int {
	return len(s.Elements)
}

// StructurallyEqual сравнивает снимки по множеству структурных ключей.
// Два снятия неизменной страницы должны давать равные снимки, даже если
// волатильные атрибуты (framework id, классы) отличаются.
func (s *Snapshot) StructurallyEqual(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.keys) != len(other.keys) {
		return false
	}
	for key := range s.keys {
		if _, ok := other.keys[key]; !ok {
			return false
		}
	}
	return true
}

// BuildKey собирает структурный ключ элемента. Ключ не зависит от
// framework-generated id и устойчив к перерисовкам той же страницы.
func BuildKey(el ElementDescriptor) string {
	label := NormalizeLabel(el.BestLabel())
	return fmt.Sprintf("%s|%s|%s", el.Kind, label, el.Path)
}

// NormalizeLabel приводит метку к канонической форме для ключей и сопоставления.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

// Capture снимает текущий снимок страницы: перечисляет интерактивные элементы
// через JavaScript и переводит их в дескрипторы. Чисто по отношению к странице -
// ничего не кликает и не скроллит.
func Capture(ctx context.Context, page playwright.Page) (*Snapshot, error) {
	if page == nil {
		return nil, fmt.Errorf("страница не инициализирована")
	}

	result, err := page.Evaluate(extractElementsJS)
	if err != nil {
		return nil, fmt.Errorf("ошибка извлечения элементов: %w", err)
	}

	title, err := page.Title()
	if err != nil {
		title = ""
	}

	raw, ok := result.([]interface{})
	if !ok {
		return NewSnapshot(page.URL(), title, nil), nil
	}

	elements := make([]ElementDescriptor, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if el := parseElement(m); el != nil {
			elements = append(elements, *el)
		}
	}

	return NewSnapshot(page.URL(), title, elements), nil
}

func parseElement(data map[string]interface{}) *ElementDescriptor {
	el := &ElementDescriptor{}

	if v, ok := data["kind"].(string); ok {
		el.Kind = v
	}
	if v, ok := data["text"].(string); ok {
		el.Text = strings.TrimSpace(v)
	}
	if v, ok := data["placeholder"].(string); ok {
		el.Placeholder = v
	}
	if v, ok := data["label"].(string); ok {
		el.Label = v
	}
	if v, ok := data["role"].(string); ok {
		el.Role = v
	}
	if v, ok := data["path"].(string); ok {
		el.Path = v
	}
	if bounds, ok := data["bounds"].(map[string]interface{}); ok {
		if x, ok := bounds["x"].(float64); ok {
			el.Bounds.X = x
		}
		if y, ok := bounds["y"].(float64); ok {
			el.Bounds.Y = y
		}
		if w, ok := bounds["width"].(float64); ok {
			el.Bounds.Width = w
		}
		if h, ok := bounds["height"].(float64); ok {
			el.Bounds.Height = h
		}
	}

	if el.Kind == "" {
		return nil
	}

	el.Key = BuildKey(*el)
	return el
}

// extractElementsJS перечисляет интерактивные элементы в порядке документа.
// Исключает невидимые и элементы нулевой площади. path строится из цепочки
// предков (role или тег + индекс среди одноименных соседей), а не из
// волатильных id фреймворка.
const extractElementsJS = `
	() => {
		const interactive = [
			'button', 'a[href]', 'input', 'textarea', 'select',
			'[role=button]', '[role=link]', '[role=tab]', '[role=menuitem]',
			'[role=textbox]', '[role=searchbox]', '[role=combobox]', '[role=option]',
			'[contenteditable="true"]'
		];

		const seen = new Set();
		const out = [];

		function kindOf(el) {
			const tag = el.tagName.toLowerCase();
			if (tag === 'a') return 'link';
			if (['button', 'input', 'textarea', 'select'].includes(tag)) return tag;
			if (el.getAttribute('contenteditable') === 'true') return 'contenteditable';
			return el.getAttribute('role') || tag;
		}

		function pathOf(el) {
			const parts = [];
			let node = el;
			let depth = 0;
			while (node && node.parentElement && depth < 8) {
				const parent = node.parentElement;
				const siblings = Array.from(parent.children).filter(c => c.tagName === node.tagName);
				const index = siblings.indexOf(node);
				const name = node.getAttribute('role') || node.tagName.toLowerCase();
				parts.unshift(siblings.length > 1 ? name + '[' + index + ']' : name);
				node = parent;
				depth++;
			}
			return parts.join('/');
		}

		for (const sel of interactive) {
			let found;
			try {
				found = document.querySelectorAll(sel);
			} catch (e) {
				continue;
			}
			for (const el of found) {
				if (seen.has(el)) continue;
				seen.add(el);

				const rect = el.getBoundingClientRect();
				const style = window.getComputedStyle(el);
				const visible = style.display !== 'none' &&
					style.visibility !== 'hidden' &&
					style.opacity !== '0' &&
					rect.width > 0 && rect.height > 0;
				if (!visible) continue;

				out.push({
					kind: kindOf(el),
					text: (el.innerText || el.value || '').trim().substring(0, 200),
					placeholder: el.getAttribute('placeholder') || '',
					label: el.getAttribute('aria-label') || el.getAttribute('title') || '',
					role: el.getAttribute('role') || '',
					path: pathOf(el),
					bounds: {
						x: rect.x,
						y: rect.y,
						width: rect.width,
						height: rect.height
					}
				});
			}
		}

		// querySelectorAll дает порядок документа внутри одного селектора,
		// но не между селекторами - сортируем по позиции, чтобы порядок
		// снимка был детерминированным.
		out.sort((a, b) => (a.bounds.y - b.bounds.y) || (a.bounds.x - b.bounds.x));
		return out;
	}
`
