package capture

import (
	"fmt"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/ternarybob/snapdiff/internal/common"
)

// pageRootXPath is the element whose bounds and pixels become the snapshot.
const pageRootXPath = "/html"

// webDriverSession drives one remote WebDriver (Selenium grid) browser.
type webDriverSession struct {
	driver selenium.WebDriver
}

func newWebDriverSession(config *common.CaptureConfig) (Session, error) {
	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chrome.Capabilities{
		Args: []string{
			"--headless",
			"--disable-gpu",
			"--no-sandbox",
			"--disable-dev-shm-usage",
		},
	})

	driver, err := selenium.NewRemote(caps, config.SeleniumURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to webdriver at %s: %w", config.SeleniumURL(), err)
	}

	if err := driver.SetPageLoadTimeout(config.NavigateTimeout); err != nil {
		driver.Quit()
		return nil, fmt.Errorf("failed to set page load timeout: %w", err)
	}

	return &webDriverSession{driver: driver}, nil
}

func (s *webDriverSession) Navigate(url string) error {
	return s.driver.Get(url)
}

func (s *webDriverSession) WaitReady(xpath string, timeout, interval time.Duration) error {
	err := s.driver.WaitWithTimeoutAndInterval(func(wd selenium.WebDriver) (bool, error) {
		elements, err := wd.FindElements(selenium.ByXPATH, xpath)
		if err != nil {
			return false, nil
		}
		return len(elements) > 0, nil
	}, timeout, interval)
	if err != nil {
		return fmt.Errorf("element %s did not appear within %s: %w", xpath, timeout, err)
	}
	return nil
}

func (s *webDriverSession) Screenshot() ([]byte, float64, float64, error) {
	root, err := s.driver.FindElement(selenium.ByXPATH, pageRootXPath)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to locate page root: %w", err)
	}

	size, err := root.Size()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read page size: %w", err)
	}

	data, err := root.Screenshot(true)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to take screenshot: %w", err)
	}

	return data, float64(size.Width), float64(size.Height), nil
}

func (s *webDriverSession) Close() error {
	return s.driver.Quit()
}
